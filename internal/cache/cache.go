// Package cache persists the fingerprints of enhanced ticket fields so that
// unchanged text is never sent to a provider twice.
//
// The backing file maps a ticket key to an object of "<field>_hash" entries:
//
//	{"AAP-1": {"description_hash": "9f86d0...", "acceptance_criteria_hash": "..."}}
//
// The file is read once by Open and rewritten in full on every mutation.
// Entries this package does not understand are kept as-is.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/danielolaszy/rh-issue/internal/fingerprint"
	"github.com/danielolaszy/rh-issue/internal/logging"
)

const hashSuffix = "_hash"

// Cache is the in-memory view of the cache file.
type Cache struct {
	path string

	mu      sync.Mutex
	tickets map[string]map[string]json.RawMessage
}

// Open loads the cache file at path. A missing or unreadable file yields an
// empty cache; Open never fails.
func Open(path string) *Cache {
	c := &Cache{
		path:    path,
		tickets: make(map[string]map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn("failed to read enhancement cache, starting empty", "path", path, "error", err)
		}
		return c
	}

	if err := c.decode(data); err != nil {
		logging.Warn("enhancement cache is corrupt, starting empty", "path", path, "error", err)
		c.tickets = make(map[string]map[string]json.RawMessage)
	}
	return c
}

func (c *Cache) decode(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}

	for key, raw := range top {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			// Not a ticket entry; keep it for whoever wrote it.
			c.keepRaw(key, raw)
			continue
		}
		c.tickets[key] = fields
	}
	return nil
}

// keepRaw stores a non-object top-level value under a reserved inner key so
// that it survives a rewrite.
func (c *Cache) keepRaw(key string, raw json.RawMessage) {
	c.tickets[key] = map[string]json.RawMessage{rawMarker: raw}
}

// rawMarker cannot collide with a field entry because field entries always end
// in hashSuffix.
const rawMarker = "\x00raw"

// Path returns the location of the backing file.
func (c *Cache) Path() string {
	return c.path
}

// Lookup returns the stored digest for a ticket field.
func (c *Cache) Lookup(key, field string) (fingerprint.Digest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.tickets[key][field+hashSuffix]
	if !ok {
		return fingerprint.Digest{}, false
	}

	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return fingerprint.Digest{}, false
	}
	d, err := fingerprint.Parse(hex)
	if err != nil {
		logging.Debug("ignoring malformed cache entry", "key", key, "field", field, "error", err)
		return fingerprint.Digest{}, false
	}
	return d, true
}

// Store records the digest for a ticket field and flushes the file.
func (c *Cache) Store(key, field string, d fingerprint.Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := c.tickets[key]
	if fields == nil || fields[rawMarker] != nil {
		fields = make(map[string]json.RawMessage)
		c.tickets[key] = fields
	}
	encoded, _ := json.Marshal(d.String())
	fields[field+hashSuffix] = encoded

	c.flush()
}

// Clear removes every entry for key and flushes the file. It reports whether
// anything was removed.
func (c *Cache) Clear(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tickets[key]; !ok {
		return false
	}
	delete(c.tickets, key)
	c.flush()
	return true
}

// ClearAll empties the cache and flushes the file. It returns the number of
// tickets removed.
func (c *Cache) ClearAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.tickets)
	c.tickets = make(map[string]map[string]json.RawMessage)
	c.flush()
	return n
}

// Len returns the number of tickets with entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickets)
}

// flush writes the whole map. Failures are logged; the in-memory state stays
// authoritative for the rest of the run. Callers hold c.mu.
func (c *Cache) flush() {
	if err := c.write(); err != nil {
		logging.Warn("failed to persist enhancement cache", "path", c.path, "error", err)
	}
}

func (c *Cache) write() error {
	out := make(map[string]json.RawMessage, len(c.tickets))
	for key, fields := range c.tickets {
		if raw, ok := fields[rawMarker]; ok {
			out[key] = raw
			continue
		}
		encoded, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to encode entry %s: %w", key, err)
		}
		out[key] = encoded
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := atomic.WriteFile(c.path, bytes.NewReader(append(data, '\n'))); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
