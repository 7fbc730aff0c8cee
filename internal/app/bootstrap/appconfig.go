// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// framework-level settings (ports, TLS, logging, CORS); AppConfig is
// everything specific to ShelterHub.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string
	MongoDatabase string

	// Access and refresh token configuration
	JWTSecret          string
	JWTExpiration      time.Duration // access token lifetime
	RefreshTokenExpiry time.Duration

	// Invitations
	InvitationExpiry time.Duration

	// Telegram bot. Empty token disables the notifier and the webhook.
	BotToken string

	// VK OAuth login. Empty client id disables /v1/auth/vk.
	VKClientID     string
	VKClientSecret string
	VKRedirectURL  string

	// Email/SMTP configuration for invitation emails.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Base URL for links in emails (invitation accept link).
	BaseURL string
}
