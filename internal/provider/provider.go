// Package provider implements the text generation backends used to improve
// ticket text.
//
// Every backend satisfies Provider. Backends are constructed by New from the
// resolved AI configuration, and every error they return is a *Error, so
// callers never deal with SDK or transport specific error types.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/config"
)

// Provider improves text according to a system prompt.
type Provider interface {
	Improve(ctx context.Context, prompt, text string) (string, error)
}

// Error is the single error kind returned by providers built with New.
type Error struct {
	// Backend is the configured provider name, e.g. "vertex".
	Backend string
	// Dependency names a missing runtime requirement, when that is the cause.
	Dependency string
	// Hint tells the user how to fix the problem.
	Hint string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Backend)
	b.WriteString(" provider")
	if e.Dependency != "" {
		b.WriteString(": missing dependency ")
		b.WriteString(e.Dependency)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Hint != "" {
		b.WriteString(" (")
		b.WriteString(e.Hint)
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError is returned when a backend answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// constructors maps normalized provider names to backend constructors.
var constructors = map[string]func(config.AIConfig) (Provider, error){
	"noop":     func(config.AIConfig) (Provider, error) { return Noop{}, nil },
	"none":     func(config.AIConfig) (Provider, error) { return Noop{}, nil },
	"off":      func(config.AIConfig) (Provider, error) { return Noop{}, nil },
	"openai":   func(c config.AIConfig) (Provider, error) { return NewOpenAI(c) },
	"ollama":   func(c config.AIConfig) (Provider, error) { return NewOllama(c), nil },
	"deepseek": func(c config.AIConfig) (Provider, error) { return NewOllama(c), nil },
	"gpt4all":  func(c config.AIConfig) (Provider, error) { return NewGPT4All(c), nil },
	"vertex":   func(c config.AIConfig) (Provider, error) { return NewVertex(c) },
}

// Names returns the accepted provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize lowercases a provider name and maps "_" to "-". An empty name
// selects the no-op provider.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "-")
	switch name {
	case "":
		return "noop"
	case "vertex-ai", "vertexai":
		return "vertex"
	}
	return name
}

// New builds the backend selected by cfg.Provider. An unknown name or an
// invalid backend setting is a *config.Error.
func New(cfg config.AIConfig) (Provider, error) {
	name := Normalize(cfg.Provider)
	construct, ok := constructors[name]
	if !ok {
		return nil, config.Errorf("unsupported AI provider %q (supported: %s)",
			cfg.Provider, strings.Join(Names(), ", "))
	}

	p, err := construct(cfg)
	if err != nil {
		return nil, err
	}
	return &guarded{name: name, inner: p}, nil
}

// IsNoop reports whether p leaves text unchanged.
func IsNoop(p Provider) bool {
	if g, ok := p.(*guarded); ok {
		p = g.inner
	}
	_, ok := p.(Noop)
	return ok
}

// guarded converts every backend failure into *Error.
type guarded struct {
	name  string
	inner Provider
}

func (g *guarded) Improve(ctx context.Context, prompt, text string) (string, error) {
	out, err := g.inner.Improve(ctx, prompt, text)
	if err == nil {
		return out, nil
	}

	var perr *Error
	if errors.As(err, &perr) {
		if perr.Backend == "" {
			perr.Backend = g.name
		}
		return "", perr
	}
	return "", &Error{Backend: g.name, Err: err}
}
