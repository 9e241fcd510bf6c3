package listview

import (
	"context"
	"time"
)

// View is the type-erased surface of a Controller used by renderers and the
// session registry.
type View interface {
	Load(ctx context.Context, n int) error
	SetPage(ctx context.Context, n int) error
	Refresh(ctx context.Context) error
	SetFilterText(text string)
	SetSort(key string, desc bool) error
	DeleteRow(ctx context.Context, id string) error
	Snapshot() Snapshot
	LastUsed() time.Time
}

var _ View = (*Controller[struct{}])(nil)
