package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Auth selects how requests are authenticated.
type Auth struct {
	// Token is a static bearer token.
	Token string

	// Issuer enables the OAuth2 client-credentials flow; the token endpoint
	// is discovered from the issuer's OpenID configuration.
	Issuer       string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// HTTPClient returns an http.Client that authenticates according to a. With
// no credentials it returns a plain client. ctx is kept for token refreshes,
// so it must outlive the client.
func HTTPClient(ctx context.Context, a Auth) (*http.Client, error) {
	switch {
	case a.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: a.Token, TokenType: "Bearer"})
		return oauth2.NewClient(ctx, ts), nil

	case a.Issuer != "":
		provider, err := oidc.NewProvider(ctx, a.Issuer)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery: %w", err)
		}
		cc := clientcredentials.Config{
			ClientID:     a.ClientID,
			ClientSecret: a.ClientSecret,
			TokenURL:     provider.Endpoint().TokenURL,
			Scopes:       a.Scopes,
		}
		return cc.Client(ctx), nil

	default:
		return &http.Client{}, nil
	}
}
