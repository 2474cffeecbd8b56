package oauth

import (
	"net/url"
	"testing"

	"flightwatch-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAuthURL(t *testing.T) {
	t.Parallel()

	o := NewGmailOAuth("client-1", "secret", "", "http://localhost:8090/oauth2callback", logger.NewNopLogger())

	parsed, err := url.Parse(o.GenerateAuthURL("state-1"))
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "https://www.googleapis.com/auth/gmail.send", q.Get("scope"))
	assert.Equal(t, "http://localhost:8090/oauth2callback", q.Get("redirect_uri"))
}
