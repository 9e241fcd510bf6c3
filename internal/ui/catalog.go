package ui

import (
	"fmt"
	"log/slog"

	"github.com/me/botadmin/internal/listview"
	"github.com/me/botadmin/pkg/botapi"
)

// Catalog exposes the list views of every screen to clients that render
// tables outside the web UI, such as the terminal browser.
type Catalog struct {
	screens []screen
	byName  map[string]screen
	logger  *slog.Logger
}

// NewCatalog wires the screens to client.
func NewCatalog(client *botapi.Client, logger *slog.Logger) *Catalog {
	c := &Catalog{
		screens: buildScreens(client, nil, logger),
		byName:  make(map[string]screen),
		logger:  logger,
	}
	for _, s := range c.screens {
		c.byName[s.Name()] = s
	}
	return c
}

// Names returns the screen names in navigation order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.screens))
	for _, s := range c.screens {
		names = append(names, s.Name())
	}
	return names
}

// Title returns the display title of the named screen.
func (c *Catalog) Title(name string) string {
	if s, ok := c.byName[name]; ok {
		return s.Title()
	}
	return name
}

// NewView returns a fresh, unloaded list view of the named screen.
func (c *Catalog) NewView(name string, pageSize int) (listview.View, error) {
	s, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScreen, name)
	}
	return s.NewView(c.logger, pageSize), nil
}
