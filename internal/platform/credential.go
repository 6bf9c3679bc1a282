package platform

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/bridgeware/agentbridge/internal/domain"
)

// Credential authorizes outbound platform requests.
type Credential interface {
	// Authorize attaches credentials to the request.
	Authorize(req *http.Request) error
}

// APIKeyCredential authenticates with a static key header.
type APIKeyCredential struct {
	Key string
}

func (c *APIKeyCredential) Authorize(req *http.Request) error {
	req.Header.Set("api-key", c.Key)
	return nil
}

// ClientSecretCredential mints short-lived bearer tokens via the OAuth2
// client-credentials flow. Tokens are cached and refreshed by the underlying
// token source.
type ClientSecretCredential struct {
	source oauth2.TokenSource
}

// NewClientSecretCredential builds a credential for the given tenant.
func NewClientSecretCredential(tenantID, clientID, clientSecret, scope string) *ClientSecretCredential {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
		Scopes:       []string{scope},
	}
	return &ClientSecretCredential{source: cfg.TokenSource(context.Background())}
}

func (c *ClientSecretCredential) Authorize(req *http.Request) error {
	tok, err := c.source.Token()
	if err != nil {
		return &domain.RemoteError{Op: "acquire platform token", Err: err}
	}
	tok.SetAuthHeader(req)
	return nil
}

// ResolveCredential picks a credential from the available settings: a static
// key wins, otherwise client-secret settings are used. Nothing configured is
// a configuration error surfaced before any remote call.
func ResolveCredential(apiKey, tenantID, clientID, clientSecret, scope string) (Credential, error) {
	if apiKey != "" {
		return &APIKeyCredential{Key: apiKey}, nil
	}
	if tenantID != "" && clientID != "" && clientSecret != "" {
		return NewClientSecretCredential(tenantID, clientID, clientSecret, scope), nil
	}
	return nil, &domain.ConfigError{Msg: "no platform credential configured (api key or tenant/client/secret)"}
}
