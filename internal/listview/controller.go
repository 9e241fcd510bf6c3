// Package listview implements the paginated, filterable and sortable table
// controller shared by every entity screen.
package listview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/me/botadmin/pkg/botapi"
	"github.com/me/botadmin/pkg/model"
)

// Source fetches one page of a remote collection.
type Source[T any] interface {
	List(ctx context.Context, pageNumber, pageLimit int) (*model.Page[T], error)
}

// Deleter removes one entity of a remote collection.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Options configures a Controller.
type Options[T any] struct {
	// Screen names the view in logs and errors.
	Screen string

	Source  Source[T]
	Deleter Deleter // optional

	Columns []Column[T]

	// RowID returns the entity identifier used for edit and delete.
	RowID func(T) string

	// FilterColumn is the key of the column SetFilterText matches against.
	FilterColumn string

	// PageSize defaults to model.DefaultPageSize.
	PageSize int

	Logger *slog.Logger
}

// Controller owns one paged collection view. It is safe for concurrent use;
// no lock is held while a request is in flight.
type Controller[T any] struct {
	opts   Options[T]
	logger *slog.Logger
	filter int // index into opts.Columns, -1 when unset

	mu         sync.Mutex
	items      []T
	pageNumber int
	totalPages int
	filterText string
	sortKey    string
	sortDesc   bool
	loading    bool
	err        error
	settled    bool   // a load has succeeded at least once
	seq        uint64 // sequence of the newest issued load
	lastUsed   time.Time
}

// New creates a controller. No request is made until Load is called.
func New[T any](opts Options[T]) *Controller[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = model.DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Controller[T]{
		opts:       opts,
		logger:     logger.With("component", "listview", "screen", opts.Screen),
		filter:     -1,
		pageNumber: 1,
		totalPages: 1,
		lastUsed:   time.Now(),
	}
	for i, col := range opts.Columns {
		if col.Key == opts.FilterColumn {
			c.filter = i
		}
	}
	return c
}

func (c *Controller[T]) touch() {
	c.lastUsed = time.Now()
}

// Load fetches page n and, unless a newer load was issued meanwhile,
// replaces the current rows with the result. On failure the previous rows
// and page count are kept and a *FetchError is recorded and returned.
func (c *Controller[T]) Load(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("load page %d: %w", n, ErrPageOutOfRange)
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.touch()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if seq == c.seq {
			c.loading = false
		}
		c.mu.Unlock()
	}()

	page, err := c.opts.Source.List(ctx, n, c.opts.PageSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.logger.Debug("discarding superseded load", "page", n, "seq", seq, "newest", c.seq)
		return ErrSuperseded
	}
	if err != nil {
		c.err = &FetchError{Screen: c.opts.Screen, Page: n, Err: err}
		c.logger.Warn("list fetch failed", "op", "load", "page", n, "error", err)
		return c.err
	}

	c.items = page.Data
	c.pageNumber = n
	c.totalPages = page.Pages(c.opts.PageSize)
	c.err = nil
	c.settled = true
	return nil
}

// SetPage moves to page n. Outside [1, totalPages] it changes nothing and
// returns ErrPageOutOfRange. The page number only changes once page n has
// been fetched.
func (c *Controller[T]) SetPage(ctx context.Context, n int) error {
	c.mu.Lock()
	if n < 1 || n > c.totalPages {
		total := c.totalPages
		c.mu.Unlock()
		return fmt.Errorf("set page %d of %d: %w", n, total, ErrPageOutOfRange)
	}
	c.mu.Unlock()

	return c.Load(ctx, n)
}

// Refresh reloads the current page.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	n := c.pageNumber
	c.mu.Unlock()
	return c.Load(ctx, n)
}

// SetFilterText narrows the visible rows of the loaded page to those whose
// filter column contains text, ignoring case. It never fetches.
func (c *Controller[T]) SetFilterText(text string) {
	c.mu.Lock()
	c.filterText = text
	c.touch()
	c.mu.Unlock()
}

// SetSort orders the visible rows by the column key. An empty key clears
// the sort.
func (c *Controller[T]) SetSort(key string, desc bool) error {
	if key != "" {
		i := c.column(key)
		if i < 0 || !c.opts.Columns[i].Sortable {
			return fmt.Errorf("sort by %q: %w", key, ErrUnknownColumn)
		}
	}
	c.mu.Lock()
	c.sortKey = key
	c.sortDesc = desc && key != ""
	c.touch()
	c.mu.Unlock()
	return nil
}

// DeleteRow deletes the entity id remotely and then refreshes the current
// page. If the collection shrank below the current page, it steps back to
// the last page. On failure the rows are left as they are.
func (c *Controller[T]) DeleteRow(ctx context.Context, id string) error {
	if c.opts.Deleter == nil {
		return ErrDeleteUnsupported
	}
	c.mu.Lock()
	c.touch()
	c.mu.Unlock()

	if err := c.opts.Deleter.Delete(ctx, id); err != nil {
		c.logger.Warn("delete failed", "op", "delete", "id", id, "error", err)
		return fmt.Errorf("delete %s %s: %w", c.opts.Screen, id, err)
	}
	c.logger.Info("row deleted", "id", id)

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	last, cur := c.totalPages, c.pageNumber
	c.mu.Unlock()
	if cur > last {
		return c.Load(ctx, last)
	}
	return nil
}

// Items returns the rows of the last settled page in server order.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Visible returns the loaded rows after filtering and sorting.
func (c *Controller[T]) Visible() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

func (c *Controller[T]) visibleLocked() []T {
	rows := make([]T, 0, len(c.items))
	needle := strings.ToLower(c.filterText)
	for _, item := range c.items {
		if needle != "" && c.filter >= 0 {
			v := strings.ToLower(c.opts.Columns[c.filter].Value(item))
			if !strings.Contains(v, needle) {
				continue
			}
		}
		rows = append(rows, item)
	}
	if c.sortKey != "" {
		col := c.opts.Columns[c.column(c.sortKey)]
		slices.SortStableFunc(rows, func(a, b T) int {
			if c.sortDesc {
				return col.compare(b, a)
			}
			return col.compare(a, b)
		})
	}
	return rows
}

func (c *Controller[T]) column(key string) int {
	for i, col := range c.opts.Columns {
		if col.Key == key {
			return i
		}
	}
	return -1
}

// PageNumber returns the current page.
func (c *Controller[T]) PageNumber() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageNumber
}

// TotalPages returns the page count reported by the last successful load.
func (c *Controller[T]) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// Loading reports whether the newest load is still in flight.
func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the error of the last load, or nil if it succeeded.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// LastUsed returns when the view was last loaded or changed.
func (c *Controller[T]) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// Snapshot returns a rendering-ready copy of the view state.
func (c *Controller[T]) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Screen:       c.opts.Screen,
		PageNumber:   c.pageNumber,
		PageSize:     c.opts.PageSize,
		TotalPages:   c.totalPages,
		FilterText:   c.filterText,
		FilterColumn: c.opts.FilterColumn,
		SortKey:      c.sortKey,
		SortDesc:     c.sortDesc,
		Loading:      c.loading,
		Loaded:       len(c.items),
		Settled:      c.settled,
		Deletable:    c.opts.Deleter != nil,
	}
	if c.err != nil {
		s.Err = c.err.Error()
		s.Unauthorized = botapi.IsUnauthorized(c.err)
	}
	for _, col := range c.opts.Columns {
		s.Columns = append(s.Columns, Header{Key: col.Key, Title: col.Title, Sortable: col.Sortable})
	}
	for _, item := range c.visibleLocked() {
		row := Row{Cells: make([]string, len(c.opts.Columns))}
		if c.opts.RowID != nil {
			row.ID = c.opts.RowID(item)
		}
		for i, col := range c.opts.Columns {
			row.Cells[i] = col.Value(item)
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}
