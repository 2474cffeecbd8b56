package repository

import "context"

// EmailRepository delivers email notifications
type EmailRepository interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSRepository delivers short text notifications to a phone number
type SMSRepository interface {
	SendSMS(ctx context.Context, to, body string) error
}
