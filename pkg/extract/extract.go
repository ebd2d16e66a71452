package extract

import (
	"context"

	"github.com/matzehuels/intentgraph/pkg/tree"
)

// Extractor groups raw records into a proposed intent tree.
type Extractor interface {
	Extract(ctx context.Context, records []tree.Entry, scenario string, prior *tree.Tree) (*tree.Tree, error)
}

// Func adapts a function to the [Extractor] interface.
type Func func(ctx context.Context, records []tree.Entry, scenario string, prior *tree.Tree) (*tree.Tree, error)

// Extract calls f.
func (f Func) Extract(ctx context.Context, records []tree.Entry, scenario string, prior *tree.Tree) (*tree.Tree, error) {
	return f(ctx, records, scenario, prior)
}

// Request is the JSON body sent to the extraction service.
type Request struct {
	Records  []tree.Entry `json:"records"`
	Scenario string       `json:"scenario"`
	Tree     *tree.Tree   `json:"tree,omitempty"`
}
