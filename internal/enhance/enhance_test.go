package enhance

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/rh-issue/internal/cache"
	"github.com/danielolaszy/rh-issue/internal/config"
	"github.com/danielolaszy/rh-issue/internal/fingerprint"
	"github.com/danielolaszy/rh-issue/internal/provider"
)

// MockProvider counts calls and delegates to ImproveFunc.
type MockProvider struct {
	ImproveFunc func(ctx context.Context, prompt, text string) (string, error)
	Calls       int
}

func (m *MockProvider) Improve(ctx context.Context, prompt, text string) (string, error) {
	m.Calls++
	return m.ImproveFunc(ctx, prompt, text)
}

func newCache(t *testing.T) *cache.Cache {
	t.Helper()
	return cache.Open(filepath.Join(t.TempDir(), "ai-hashes.json"))
}

func TestImproveIsIdempotent(t *testing.T) {
	mock := &MockProvider{ImproveFunc: func(_ context.Context, _, text string) (string, error) {
		return "improved: " + text, nil
	}}
	c := newCache(t)
	e := New(mock, c)

	first := e.Improve(context.Background(), "AAP-1", "description", "prompt", "draft")
	require.NoError(t, first.Err)
	assert.True(t, first.Called)
	assert.Equal(t, "improved: draft", first.Text)

	// The written-back text comes through again on the next run.
	second := e.Improve(context.Background(), "AAP-1", "description", "prompt", first.Text)
	assert.True(t, second.CacheHit)
	assert.False(t, second.Called)
	assert.Equal(t, first.Text, second.Text)

	assert.Equal(t, 1, mock.Calls)

	stored, ok := c.Lookup("AAP-1", "description")
	require.True(t, ok)
	assert.Equal(t, fingerprint.Of("improved: draft"), stored)
}

func TestImproveEditedTextCallsAgain(t *testing.T) {
	mock := &MockProvider{ImproveFunc: func(_ context.Context, _, text string) (string, error) {
		return text + "!", nil
	}}
	e := New(mock, newCache(t))

	r := e.Improve(context.Background(), "AAP-1", "description", "p", "one")
	e.Improve(context.Background(), "AAP-1", "description", "p", r.Text+" edited")

	assert.Equal(t, 2, mock.Calls)
}

func TestImproveFailureKeepsOriginal(t *testing.T) {
	boom := errors.New("connection refused")
	mock := &MockProvider{ImproveFunc: func(context.Context, string, string) (string, error) {
		return "", boom
	}}
	c := newCache(t)
	e := New(mock, c)

	r := e.Improve(context.Background(), "AAP-2", "description", "p", "original")

	assert.ErrorIs(t, r.Err, boom)
	assert.Equal(t, "original", r.Text)
	assert.False(t, r.Changed("original"))
	assert.Equal(t, 0, c.Len())
}

func TestImproveWithoutKeySkipsCache(t *testing.T) {
	mock := &MockProvider{ImproveFunc: func(_ context.Context, _, text string) (string, error) {
		return text, nil
	}}
	c := newCache(t)
	e := New(mock, c)

	e.Improve(context.Background(), "", "description", "p", "text")
	e.Improve(context.Background(), "", "description", "p", "text")

	assert.Equal(t, 2, mock.Calls)
	assert.Equal(t, 0, c.Len())
}

func TestNilCache(t *testing.T) {
	mock := &MockProvider{ImproveFunc: func(_ context.Context, _, text string) (string, error) {
		return text, nil
	}}
	e := New(mock, nil)

	e.Improve(context.Background(), "AAP-1", "description", "p", "text")
	e.Improve(context.Background(), "AAP-1", "description", "p", "text")
	assert.Equal(t, 2, mock.Calls)
	assert.False(t, e.Forget("AAP-1"))
}

func TestReview(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		err       error
		verdict   Verdict
		wantStore bool
	}{
		{name: "ok", reply: "OK", verdict: VerdictOK, wantStore: true},
		{name: "ok in sentence", reply: "Looks ok to me.", verdict: VerdictOK, wantStore: true},
		{name: "problem", reply: "Too vague, lacks scope.", verdict: VerdictProblem},
		{name: "failure", err: errors.New("timeout"), verdict: VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockProvider{ImproveFunc: func(context.Context, string, string) (string, error) {
				return tt.reply, tt.err
			}}
			c := newCache(t)
			e := New(mock, c)

			r := e.Review(context.Background(), "AAP-3", "summary", "review", "Fix login")
			assert.Equal(t, tt.verdict, r.Verdict)
			assert.True(t, r.Called)
			if tt.err != nil {
				assert.ErrorIs(t, r.Err, tt.err)
			}
			if tt.verdict == VerdictProblem {
				assert.Equal(t, tt.reply, r.Reply)
			}

			_, stored := c.Lookup("AAP-3", "summary")
			assert.Equal(t, tt.wantStore, stored)
		})
	}
}

func TestReviewCacheHit(t *testing.T) {
	mock := &MockProvider{ImproveFunc: func(context.Context, string, string) (string, error) {
		return "OK", nil
	}}
	e := New(mock, newCache(t))

	e.Review(context.Background(), "AAP-4", "summary", "review", "Fix login")
	r := e.Review(context.Background(), "AAP-4", "summary", "review", "Fix login")

	assert.True(t, r.OK())
	assert.True(t, r.CacheHit)
	assert.Equal(t, 1, mock.Calls)
}

func TestRecheckSkipsLookupButRecords(t *testing.T) {
	mock := &MockProvider{ImproveFunc: func(context.Context, string, string) (string, error) {
		return "OK", nil
	}}
	e := New(mock, newCache(t))

	e.Review(context.Background(), "AAP-4", "summary", "review", "Fix login")
	r := e.Recheck(context.Background(), "AAP-4", "summary", "review", "Fix login")
	assert.True(t, r.OK())
	assert.False(t, r.CacheHit)
	assert.Equal(t, 2, mock.Calls)

	fresh := New(mock, newCache(t))
	fresh.Recheck(context.Background(), "AAP-5", "summary", "review", "Fix logout")
	r = fresh.Review(context.Background(), "AAP-5", "summary", "review", "Fix logout")
	assert.True(t, r.CacheHit)
	assert.Equal(t, 3, mock.Calls)
}

func TestRememberAndForget(t *testing.T) {
	mock := &MockProvider{ImproveFunc: func(context.Context, string, string) (string, error) {
		return "changed", nil
	}}
	e := New(mock, newCache(t))

	e.Remember("AAP-5", "description", "final text")
	r := e.Improve(context.Background(), "AAP-5", "description", "p", "final text")
	assert.True(t, r.CacheHit)

	assert.True(t, e.Forget("AAP-5"))
	r = e.Improve(context.Background(), "AAP-5", "description", "p", "final text")
	assert.True(t, r.Called)
}

func TestDisabled(t *testing.T) {
	assert.True(t, New(nil, nil).Disabled())
	assert.False(t, New(&MockProvider{}, nil).Disabled())

	p, err := provider.New(config.AIConfig{Provider: "off"})
	require.NoError(t, err)
	assert.True(t, New(p, nil).Disabled())
}

func TestDisabledRecordsNothing(t *testing.T) {
	c := cache.Open(filepath.Join(t.TempDir(), "cache.json"))
	e := New(provider.Noop{}, c)

	r := e.Improve(context.Background(), "AAP-1", "description", "prompt", "text")
	assert.Equal(t, "text", r.Text)
	assert.False(t, r.Called)
	assert.Equal(t, 0, c.Len())

	rv := e.Review(context.Background(), "AAP-1", "summary", "prompt", "text")
	assert.Equal(t, VerdictUnknown, rv.Verdict)
	assert.Equal(t, 0, c.Len())
}
