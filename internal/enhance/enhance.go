// Package enhance runs ticket text through a provider at most once per
// distinct content.
//
// Before calling the provider the text's fingerprint is compared with the one
// recorded for the same ticket field. A match means the text was already
// produced or approved by a provider and is returned untouched.
package enhance

import (
	"context"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/cache"
	"github.com/danielolaszy/rh-issue/internal/fingerprint"
	"github.com/danielolaszy/rh-issue/internal/logging"
	"github.com/danielolaszy/rh-issue/internal/provider"
)

// Enhancer combines a provider with the fingerprint cache.
type Enhancer struct {
	provider provider.Provider
	cache    *cache.Cache
}

// New returns an Enhancer. A nil cache disables caching.
func New(p provider.Provider, c *cache.Cache) *Enhancer {
	if p == nil {
		p = provider.Noop{}
	}
	return &Enhancer{provider: p, cache: c}
}

// Disabled reports whether the provider leaves text unchanged.
func (e *Enhancer) Disabled() bool {
	return provider.IsNoop(e.provider)
}

// Result is the outcome of Improve.
type Result struct {
	// Text is the text to write back. It is the original text when the
	// provider failed or was skipped.
	Text string
	// Called is true when the provider was invoked.
	Called bool
	// CacheHit is true when the text matched the stored fingerprint.
	CacheHit bool
	// Err is the provider failure, if any.
	Err error
}

// Changed reports whether Text differs from the given original.
func (r Result) Changed(original string) bool {
	return r.Text != original
}

// Improve returns text rewritten by the provider under prompt.
//
// With a non-empty key the field's stored fingerprint is consulted first and
// the fingerprint of the returned text is stored on success, so improving the
// same field again without edits makes no provider call. On provider failure
// the original text is returned along with the error and the cache is left
// as it was. A disabled enhancer returns text as is and records nothing.
func (e *Enhancer) Improve(ctx context.Context, key, field, prompt, text string) Result {
	if e.Disabled() {
		return Result{Text: text}
	}
	if e.hit(key, field, text) {
		logging.Debug("enhancement cache hit", "key", key, "field", field)
		return Result{Text: text, CacheHit: true}
	}

	out, err := e.provider.Improve(ctx, prompt, text)
	if err != nil {
		logging.Warn("provider failed, keeping original text", "key", key, "field", field, "error", err)
		return Result{Text: text, Called: true, Err: err}
	}

	e.Remember(key, field, out)
	return Result{Text: out, Called: true}
}

// Verdict is the outcome of a quality review.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictOK
	VerdictProblem
)

// Review is the outcome of a quality check.
type Review struct {
	Verdict Verdict
	// Reply is the provider's explanation for VerdictProblem.
	Reply    string
	Called   bool
	CacheHit bool
	Err      error
}

// OK reports whether the text passed.
func (r Review) OK() bool {
	return r.Verdict == VerdictOK
}

// Review asks the provider whether text is acceptable under prompt. Text
// that passed before, unchanged, is accepted without a call. Only passing
// text is recorded.
func (e *Enhancer) Review(ctx context.Context, key, field, prompt, text string) Review {
	return e.review(ctx, key, field, prompt, text, true)
}

// Recheck is Review without the fingerprint lookup. A pass is still recorded.
func (e *Enhancer) Recheck(ctx context.Context, key, field, prompt, text string) Review {
	return e.review(ctx, key, field, prompt, text, false)
}

func (e *Enhancer) review(ctx context.Context, key, field, prompt, text string, lookup bool) Review {
	if e.Disabled() {
		return Review{Verdict: VerdictUnknown}
	}
	if lookup && e.hit(key, field, text) {
		return Review{Verdict: VerdictOK, CacheHit: true}
	}

	reply, err := e.provider.Improve(ctx, prompt, text)
	if err != nil {
		logging.Warn("provider review failed", "key", key, "field", field, "error", err)
		return Review{Verdict: VerdictUnknown, Called: true, Err: err}
	}

	if !strings.Contains(strings.ToLower(reply), "ok") {
		return Review{Verdict: VerdictProblem, Reply: strings.TrimSpace(reply), Called: true}
	}

	e.Remember(key, field, text)
	return Review{Verdict: VerdictOK, Called: true}
}

// Remember records text as the current enhanced content of key's field.
func (e *Enhancer) Remember(key, field, text string) {
	if e.cache == nil || key == "" {
		return
	}
	e.cache.Store(key, field, fingerprint.Of(text))
}

// Forget drops every recorded field of key.
func (e *Enhancer) Forget(key string) bool {
	if e.cache == nil || key == "" {
		return false
	}
	return e.cache.Clear(key)
}

func (e *Enhancer) hit(key, field, text string) bool {
	if e.cache == nil || key == "" {
		return false
	}
	stored, ok := e.cache.Lookup(key, field)
	return ok && stored.Equal(fingerprint.Of(text))
}
