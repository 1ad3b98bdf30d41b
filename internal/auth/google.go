package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// UserInfo is the subset of the Google userinfo response the server needs.
// Email becomes the identity tag for all memory scoping.
type UserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Google drives the OAuth web flow against Google's endpoints.
type Google struct {
	conf        *oauth2.Config
	userinfoURL string
}

// NewGoogle constructs the OAuth flow helper. clientID/clientSecret may be
// empty; Configured lets the login handler report that as a config error.
func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: userinfoEndpoint,
	}
}

// Configured reports whether an OAuth client is set up.
func (g *Google) Configured() bool {
	return g.conf.ClientID != "" && g.conf.ClientSecret != ""
}

// AuthCodeURL returns the consent page URL for the given state token.
func (g *Google) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and resolves the user's
// identity from the userinfo endpoint.
func (g *Google) Exchange(ctx context.Context, code string) (*UserInfo, error) {
	if code == "" {
		return nil, errors.New("auth: missing authorization code")
	}

	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: code exchange failed: %w", err)
	}

	client := g.conf.Client(ctx, token)
	resp, err := client.Get(g.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: userinfo request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("auth: userinfo returned %d: %s", resp.StatusCode, string(body))
	}

	var info UserInfo
	if err = json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("auth: decode userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("auth: user email is required")
	}
	return &info, nil
}
