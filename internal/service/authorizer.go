package service

import "context"

// Authorizer is the access-control hook point consulted before every
// mutating operation. The current deployment grants open access; a
// future access-control layer replaces this implementation without
// touching lifecycle logic.
type Authorizer interface {
	Authorize(ctx context.Context, action string, postID string) error
}

type allowAll struct{}

// NewAllowAllAuthorizer returns the open-access Authorizer.
func NewAllowAllAuthorizer() Authorizer {
	return allowAll{}
}

func (allowAll) Authorize(ctx context.Context, action string, postID string) error {
	return nil
}
