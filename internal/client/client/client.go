package client

import (
	"context"

	"github.com/dmitrijs2005/devconnector/internal/client/models"
)

// RequestOptions is the per-request snapshot of session state. It is
// captured when a request is dispatched and never shared between calls.
type RequestOptions struct {
	Token string
}

type Client interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, opts RequestOptions) (*models.User, error)
	Logout(ctx context.Context, opts RequestOptions) error
	Health(ctx context.Context) error
}
