package form

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/me/botadmin/pkg/model"
)

// Option is one entry of a selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Options maps lookup pairs to selector options, marking those whose key is
// in selected.
func Options(pairs []model.NamePair, selected ...string) []Option {
	opts := make([]Option, 0, len(pairs))
	for _, p := range pairs {
		key := p.Key.String()
		opts = append(opts, Option{
			Value:    key,
			Label:    p.Value,
			Selected: slices.Contains(selected, key),
		})
	}
	return opts
}

// LabelMap builds a {name: id} map for the selected ids. Ids missing from
// pairs are keyed by the id itself.
func LabelMap(selected []string, pairs []model.NamePair) model.LinkMap {
	m := make(model.LinkMap, len(selected))
	for _, id := range selected {
		label := id
		for _, p := range pairs {
			if p.Key.String() == id {
				label = p.Value
				break
			}
		}
		m[label] = model.Key(id)
	}
	return m
}

// LinkKeys returns the ids of a {name: id} map, for preselecting options.
func LinkKeys(m model.LinkMap) []string {
	keys := make([]string, 0, len(m))
	for _, k := range m {
		keys = append(keys, k.String())
	}
	slices.Sort(keys)
	return keys
}

// Lookup fetches a name list.
type Lookup interface {
	Names(ctx context.Context) ([]model.NamePair, error)
}

// LoadLookups fetches several name lists concurrently. The first failure
// cancels the rest.
func LoadLookups(ctx context.Context, lookups map[string]Lookup) (map[string][]model.NamePair, error) {
	results := make([][]model.NamePair, 0, len(lookups))
	names := make([]string, 0, len(lookups))
	for name := range lookups {
		names = append(names, name)
		results = append(results, nil)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			pairs, err := lookups[name].Names(gctx)
			if err != nil {
				return fmt.Errorf("load %s names: %w", name, err)
			}
			results[i] = pairs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]model.NamePair, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}
