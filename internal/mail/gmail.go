package mail

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender delivers mail through the Gmail API using OAuth2 client
// credentials and a long-lived refresh token.
type GmailSender struct {
	oauth   *oauth2.Config
	refresh string
	From    string
}

// NewGmailSender creates a Gmail API sender from OAuth2 client credentials
func NewGmailSender(clientID, clientSecret, refreshToken, from string) *GmailSender {
	return &GmailSender{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailSendScope},
		},
		refresh: refreshToken,
		From:    from,
	}
}

// Send dispatches a plain-text message via the Gmail API
func (g *GmailSender) Send(ctx context.Context, from, to, subject, body string) error {
	if from == "" {
		from = g.From
	}

	source := g.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: g.refresh})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return fmt.Errorf("gmail service: %w", err)
	}

	raw := base64.RawURLEncoding.EncodeToString(buildMessage(from, to, subject, body))
	if _, err := svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}

// buildMessage assembles a minimal RFC 822 plain-text message
func buildMessage(from, to, subject, body string) []byte {
	msg := "From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		body
	return []byte(msg)
}
