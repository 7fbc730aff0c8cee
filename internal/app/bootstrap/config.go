// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ShelterHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: SHELTERHUB_MONGO_URI, SHELTERHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "shelter_hub", Desc: "MongoDB database name"},

	// Tokens
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "JWT signing secret (must be strong in production)"},
	{Name: "jwt_expiration_minutes", Default: 60, Desc: "Access token lifetime in minutes"},
	{Name: "refresh_token_expiry_days", Default: 30, Desc: "Refresh token lifetime in days"},

	// Invitations
	{Name: "invitation_expiry_days", Default: 60, Desc: "Invitation lifetime in days"},

	// Telegram bot
	{Name: "bot_token", Default: "", Desc: "Telegram bot token (empty disables the bot and notifications)"},

	// VK OAuth login
	{Name: "vk_client_id", Default: "", Desc: "VK OAuth application id"},
	{Name: "vk_client_secret", Default: "", Desc: "VK OAuth application secret"},
	{Name: "vk_redirect_url", Default: "", Desc: "VK OAuth redirect URL registered with the application"},

	// Email/SMTP configuration for invitation emails
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (empty disables outbound email)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@shelterhub.app", Desc: "From email address"},
	{Name: "mail_from_name", Default: "ShelterHub", Desc: "From display name"},

	// Base URL for email links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for links in emails"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SHELTERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		JWTSecret:          appValues.String("jwt_secret"),
		JWTExpiration:      time.Duration(appValues.Int("jwt_expiration_minutes")) * time.Minute,
		RefreshTokenExpiry: time.Duration(appValues.Int("refresh_token_expiry_days")) * 24 * time.Hour,

		InvitationExpiry: time.Duration(appValues.Int("invitation_expiry_days")) * 24 * time.Hour,

		BotToken: appValues.String("bot_token"),

		VKClientID:     appValues.String("vk_client_id"),
		VKClientSecret: appValues.String("vk_client_secret"),
		VKRedirectURL:  appValues.String("vk_redirect_url"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// ShelterHub validates the MongoDB URI format and the token settings to
// catch configuration errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must not be empty")
	}
	if appCfg.JWTExpiration <= 0 {
		return fmt.Errorf("jwt_expiration_minutes must be positive")
	}
	if (appCfg.VKClientID == "") != (appCfg.VKClientSecret == "") {
		return fmt.Errorf("vk_client_id and vk_client_secret must be set together")
	}
	return nil
}
