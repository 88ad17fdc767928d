package email

import "context"

// ProviderType represents the type of email provider
type ProviderType string

const (
	ProviderTypeConsole ProviderType = "console"
	ProviderTypeSMTP    ProviderType = "smtp"
	ProviderTypeNoOp    ProviderType = "noop"
)

// EmailData represents generic email data
type EmailData struct {
	To          string
	Subject     string
	TextBody    string
	FromAddress string
	FromName    string
}

// Sender defines the interface for sending notification emails.
type Sender interface {
	// SendEmail sends a generic email
	SendEmail(ctx context.Context, data EmailData) error

	// Health checks if the email service is available
	Health(ctx context.Context) error

	// ProviderType returns the type of the provider
	ProviderType() ProviderType
}
