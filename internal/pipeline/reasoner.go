package pipeline

import (
	"context"

	"github.com/fyrsmithlabs/habitd/internal/classify"
	"github.com/fyrsmithlabs/habitd/internal/compress"
)

// Reasoner enriches classified suggestions with free-text guidance,
// typically by handing the digests to an external language model. The
// pipeline depends only on this interface; heuristic classification
// works without any reasoner.
type Reasoner interface {
	Enrich(ctx context.Context, digests []compress.Digest, suggestions []classify.Suggestion) ([]classify.Suggestion, error)
}

// NoopReasoner returns suggestions unchanged.
type NoopReasoner struct{}

func (NoopReasoner) Enrich(_ context.Context, _ []compress.Digest, suggestions []classify.Suggestion) ([]classify.Suggestion, error) {
	return suggestions, nil
}

var _ Reasoner = NoopReasoner{}
