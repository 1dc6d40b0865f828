package httpgateway

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

type credentialTokenSource struct {
	ctx   context.Context
	store ports.CredentialStore
}

// NewTokenSource exposes the credential store as an oauth2.TokenSource so
// CRUD collaborators (products, staff, orders) send the same bearer token.
// It reads the store on every call; switches and logouts take effect at once.
func NewTokenSource(ctx context.Context, store ports.CredentialStore) oauth2.TokenSource {
	return &credentialTokenSource{ctx: ctx, store: store}
}

func (s *credentialTokenSource) Token() (*oauth2.Token, error) {
	tok, ok, err := s.store.Get(s.ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "read credential")
	}
	if !ok {
		return nil, apperrors.StaleCredential()
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// AuthorizedClient returns an HTTP client that injects the current credential
// and shares this gateway's transport and cookie jar. The source is not
// wrapped in oauth2.ReuseTokenSource: a cached token would outlive a logout.
func (c *Client) AuthorizedClient(ctx context.Context) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: NewTokenSource(ctx, c.store),
			Base:   c.http.Transport,
		},
		Jar:     c.http.Jar,
		Timeout: c.http.Timeout,
	}
}
