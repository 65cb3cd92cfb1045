package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	raw := string(buildMessage("host@example.com", "guest@example.com", "Invitation to Event", "See you there."))

	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found, "message must separate headers from body with a blank line")

	assert.Contains(t, headers, "From: host@example.com")
	assert.Contains(t, headers, "To: guest@example.com")
	assert.Contains(t, headers, "Subject: Invitation to Event")
	assert.Contains(t, headers, "Content-Type: text/plain")
	assert.Equal(t, "See you there.", body)
}

func TestGmailSenderFromFallback(t *testing.T) {
	s := NewGmailSender("id", "secret", "refresh", "noreply@example.com")
	assert.Equal(t, "noreply@example.com", s.From)
	assert.Equal(t, "id", s.oauth.ClientID)
}
