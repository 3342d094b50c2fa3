package gdrive

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// OAuth wraps the Google consent and token exchange for the Drive scope.
// Refresh-token-to-access-token exchange is handled by the oauth2 token
// source on every API call.
type OAuth struct {
	config *oauth2.Config
}

func NewOAuth(clientID, clientSecret, redirectURL string) *OAuth {
	return &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{drive.DriveScope},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the provider-hosted consent URL the administrator visits to
// grant Drive access. Offline access forces a refresh token to be issued.
func (o *OAuth) AuthURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the one-time authorization code for a token carrying the
// refresh credential.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return o.config.Exchange(ctx, code)
}

// TokenSource yields access tokens from a stored refresh credential.
func (o *OAuth) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return o.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}
