package notification

import "context"

// ChatSender delivers a message to the owner through the interactive chat
// channel (Telegram in production).
type ChatSender interface {
	SendChatMessage(ctx context.Context, ownerID int64, text string) error
}

// EmailSender delivers a message to an email address.
type EmailSender interface {
	SendEmail(ctx context.Context, address, subject, body string) error
}
