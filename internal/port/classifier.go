package port

import (
	"context"

	"github.com/ptl2504/text-vending/internal/core/domain"
)

type Classifier interface {
	// Classify maps free-form request text to a label from the closed
	// vocabulary. One external round-trip; no retry policy here.
	Classify(ctx context.Context, text string) (domain.Label, error)
}
