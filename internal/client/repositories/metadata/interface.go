// Package metadata stores small key/value settings of the CLI client,
// such as the persisted session token.
package metadata

import (
	"context"

	"github.com/dmitrijs2005/devconnector/internal/common"
)

// KeyToken is the key the session token is stored under.
const KeyToken = common.TokenMetadataKey

type Repository interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
