// Package form implements create/edit submission for entity screens and the
// decoding of their HTML form fields.
package form

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Saver persists an entity body remotely.
type Saver interface {
	Create(ctx context.Context, body any) error
	Update(ctx context.Context, id string, body any) error
}

// Observer is told about every submit outcome. action is "create" or "update".
type Observer func(ctx context.Context, entity, action, id string, err error)

// Controller submits create/edit forms of one entity.
type Controller[I any] struct {
	entity  string
	saver   Saver
	listURL string
	logger  *slog.Logger
	observe Observer
}

// NewController binds a controller to saver. listURL is where the operator
// lands after a successful save.
func NewController[I any](entity string, saver Saver, listURL string, logger *slog.Logger) *Controller[I] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller[I]{
		entity:  entity,
		saver:   saver,
		listURL: listURL,
		logger:  logger.With("component", "form", "entity", entity),
	}
}

// Observe registers fn to be called after every submit.
func (c *Controller[I]) Observe(fn Observer) *Controller[I] {
	c.observe = fn
	return c
}

// ListURL returns the list screen URL.
func (c *Controller[I]) ListURL() string {
	return c.listURL
}

// Submit creates the entity when id is empty and updates it otherwise. On
// success it returns the URL to navigate to; on failure the caller keeps
// the form populated and shows the error.
func (c *Controller[I]) Submit(ctx context.Context, id string, input I) (string, error) {
	action := "update"
	var err error
	if id == "" {
		action = "create"
		err = c.saver.Create(ctx, input)
	} else {
		err = c.saver.Update(ctx, id, input)
	}

	if c.observe != nil {
		c.observe(ctx, c.entity, action, id, err)
	}
	if err != nil {
		c.logger.Warn("submit failed", "op", action, "id", id, "error", err)
		return "", fmt.Errorf("%s %s: %w", action, c.entity, err)
	}
	c.logger.Info("entity saved", "op", action, "id", id)
	return c.listURL, nil
}
