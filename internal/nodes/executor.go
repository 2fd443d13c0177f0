// Package nodes implements the built-in catalogue of leaf node types the
// default Registry ships with: the Strategy pattern the teacher's
// pkg/executor package uses, generalized to write through the namespaced
// shared store instead of a flat results map.
package nodes

import (
	"context"

	"github.com/pflowhq/pflow/internal/store"
)

// Executor is a single node type's execution strategy. Params arrive already
// resolved by the Node Wrapper's prep phase; Execute writes its outputs into
// out, its own namespaced view of the shared store, and returns an error if
// it fails.
type Executor interface {
	Execute(ctx context.Context, params map[string]any, out *store.Namespaced) error
}

// Factory constructs a fresh Executor instance for one node.
type Factory func() Executor
