package port

import (
	"context"

	"github.com/ptl2504/text-vending/internal/core/domain"
)

type CacheRepository interface {
	// GetLabel returns the cached classification for a request text,
	// and false on a cache miss.
	GetLabel(ctx context.Context, text string) (domain.Label, bool, error)

	// SetLabel caches the classification for a request text.
	SetLabel(ctx context.Context, text string, label domain.Label) error
}
