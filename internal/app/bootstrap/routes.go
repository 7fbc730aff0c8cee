// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	authnfeature "github.com/shelterhub/shelterhub/internal/app/features/authn"
	botfeature "github.com/shelterhub/shelterhub/internal/app/features/bot"
	doorlogfeature "github.com/shelterhub/shelterhub/internal/app/features/doorlog"
	healthfeature "github.com/shelterhub/shelterhub/internal/app/features/health"
	invitationsfeature "github.com/shelterhub/shelterhub/internal/app/features/invitations"
	organizationsfeature "github.com/shelterhub/shelterhub/internal/app/features/organizations"
	propertiesfeature "github.com/shelterhub/shelterhub/internal/app/features/properties"
	tasksfeature "github.com/shelterhub/shelterhub/internal/app/features/tasks"
	usersfeature "github.com/shelterhub/shelterhub/internal/app/features/users"
	"github.com/shelterhub/shelterhub/internal/app/lifecycle"
	"github.com/shelterhub/shelterhub/internal/app/notify"
	doorlogstore "github.com/shelterhub/shelterhub/internal/app/store/doorlogs"
	invitationstore "github.com/shelterhub/shelterhub/internal/app/store/invitations"
	organizationstore "github.com/shelterhub/shelterhub/internal/app/store/organizations"
	propertystore "github.com/shelterhub/shelterhub/internal/app/store/properties"
	refreshtokenstore "github.com/shelterhub/shelterhub/internal/app/store/refreshtokens"
	taskstore "github.com/shelterhub/shelterhub/internal/app/store/tasks"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/app/system/mailer"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. ShelterHub builds the stores,
// the token manager, the lifecycle service, and the Telegram notifier,
// then mounts the JSON API under /v1 plus /health at the root.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Stores
	users := userstore.New(db)
	orgs := organizationstore.New(db)
	tasks := taskstore.New(db)
	props := propertystore.New(db)
	invitations := invitationstore.New(db, appCfg.InvitationExpiry)
	refreshTokens := refreshtokenstore.New(db, appCfg.RefreshTokenExpiry)
	doorLogs := doorlogstore.New(db)

	// Bearer auth: tokens are verified per request and the user record
	// is re-fetched so role changes take effect immediately.
	tokens, err := auth.NewTokenManager(appCfg.JWTSecret, appCfg.JWTExpiration)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}
	authMW := auth.NewMiddleware(tokens, userstore.NewFetcher(users), logger)

	// Telegram side channel. Without a bot token the notifier degrades
	// to a no-op and the webhook route rejects everything.
	var sender notify.Sender
	if appCfg.BotToken != "" {
		ts, err := notify.NewTelegramSender(appCfg.BotToken)
		if err != nil {
			logger.Error("telegram bot init failed", zap.Error(err))
			return nil, err
		}
		sender = ts
	}
	notifier := notify.New(props, users, sender, logger)

	// Invitation email
	mail := mailer.New(appCfg.MailSMTPHost, appCfg.MailSMTPPort,
		appCfg.MailSMTPUser, appCfg.MailSMTPPass, appCfg.MailFrom, appCfg.MailFromName)

	lc := lifecycle.New(tasks, users, orgs, logger)

	r := chi.NewRouter()

	// Global auth middleware: resolves the bearer token into a user in
	// context; anonymous requests pass through and are gated per route.
	r.Use(authMW.LoadBearerUser)

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	r.Route("/v1", func(v1 chi.Router) {
		v1.Mount("/auth", authnfeature.Routes(authnfeature.NewHandler(
			users, orgs, invitations, refreshTokens, tokens,
			appCfg.VKClientID, appCfg.VKClientSecret, appCfg.VKRedirectURL, logger)))

		v1.Mount("/tasks", tasksfeature.Routes(tasksfeature.NewHandler(tasks, users, lc, logger)))
		v1.Mount("/organizations", organizationsfeature.Routes(organizationsfeature.NewHandler(orgs, users, logger)))
		v1.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(users, logger)))

		expiryDays := int(appCfg.InvitationExpiry.Hours() / 24)
		v1.Mount("/invitations", invitationsfeature.Routes(invitationsfeature.NewHandler(
			invitations, orgs, mail, appCfg.BaseURL, expiryDays, logger)))

		v1.Mount("/properties", propertiesfeature.Routes(propertiesfeature.NewHandler(props, logger)))
		v1.Mount("/doorLog", doorlogfeature.Routes(doorlogfeature.NewHandler(doorLogs, notifier, logger)))

		// Telegram webhook; the bot token in the path is the secret.
		v1.Mount("/", botfeature.Routes(botfeature.NewHandler(users, props, sender, appCfg.BotToken, logger)))
	})

	return r, nil
}
