package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeBuildsRFC822Message(t *testing.T) {
	msg := string(compose("noreply@wallet.sy", "user@example.com", "Your transfer code", "<b>123456</b>"))

	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	assert.True(t, found, "message must separate headers from body with a blank line")
	assert.Contains(t, headers, "From: noreply@wallet.sy")
	assert.Contains(t, headers, "To: user@example.com")
	assert.Contains(t, headers, "Subject: Your transfer code")
	assert.Contains(t, headers, "Content-Type: text/html")
	assert.Equal(t, "<b>123456</b>", body)
}
