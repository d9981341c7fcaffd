package interfaces

import (
	"context"

	"github.com/donmikel/sheetdrop/applications/issuer/domain"
)

// Presigner turns an object key into a URL the client can PUT to.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string) (domain.Grant, error)
	// Direct reports whether clients upload straight to the bucket, bypassing
	// the issuer's own object endpoint.
	Direct() bool
}

type GrantStore interface {
	Issue(ctx context.Context, key string) (domain.Grant, error)
	Consume(ctx context.Context, key, token string) error
}
