package provider

import "context"

// Noop returns text unchanged. It disables enhancement without changing
// call sites.
type Noop struct{}

func (Noop) Improve(_ context.Context, _, text string) (string, error) {
	return text, nil
}
