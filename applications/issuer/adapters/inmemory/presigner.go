package inmemory

import (
	"context"
	"fmt"
	"net/url"

	"github.com/donmikel/sheetdrop/applications/issuer/domain"
	"github.com/donmikel/sheetdrop/applications/issuer/interfaces"
)

type presigner struct {
	baseURL *url.URL
	grants  interfaces.GrantStore
}

// NewPresigner signs URLs that point back at the issuer's own object
// endpoint.
func NewPresigner(baseURL string, grants interfaces.GrantStore) (interfaces.Presigner, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("can't parse public url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("public url %q must be absolute", baseURL)
	}

	return &presigner{
		baseURL: u,
		grants:  grants,
	}, nil
}

func (p *presigner) PresignPut(ctx context.Context, key, contentType string) (domain.Grant, error) {
	grant, err := p.grants.Issue(ctx, key)
	if err != nil {
		return domain.Grant{}, fmt.Errorf("can't issue grant: %w", err)
	}

	u := p.baseURL.JoinPath("objects", key)
	u.RawQuery = url.Values{"token": {grant.Token}}.Encode()
	grant.URL = u.String()

	return grant, nil
}

func (p *presigner) Direct() bool {
	return false
}
