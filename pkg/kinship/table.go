package kinship

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kinship/pkg/family"
)

// Separator joins the two paths of a relationship key.
const Separator = ":"

// DistantRelative is the term used when a key is not in the table, or when
// the table has no entry for the person's gender.
const DistantRelative = "distant relative"

// Terms maps a gender tag to the kinship term for that gender.
type Terms map[family.Gender]string

// Table maps relationship keys ("<self path>:<other path>") to gendered
// kinship terms. A Table is read-only once constructed and may be shared
// freely between resolvers and goroutines.
type Table struct {
	entries map[string]Terms
}

//go:embed relationships.toml
var defaultTableTOML []byte

// DefaultTable returns the built-in English kinship table. The table is
// parsed once and every call returns the same read-only value.
var DefaultTable = sync.OnceValue(func() *Table {
	t, err := ParseTable(bytes.NewReader(defaultTableTOML), FormatTOML)
	if err != nil {
		panic(fmt.Sprintf("kinship: embedded table: %v", err))
	}
	return t
})

// NewTable copies entries into a new Table. Keys must contain exactly one
// [Separator] and only P/S steps; gender tags must be valid.
func NewTable(entries map[string]Terms) (*Table, error) {
	t := &Table{entries: make(map[string]Terms, len(entries))}
	for key, terms := range entries {
		if err := validateKey(key); err != nil {
			return nil, err
		}
		cp := make(Terms, len(terms))
		for g, term := range terms {
			if !g.Valid() {
				return nil, fmt.Errorf("key %q: %w %q", key, family.ErrInvalidGender, string(g))
			}
			cp[g] = term
		}
		t.entries[key] = cp
	}
	return t, nil
}

func validateKey(key string) error {
	self, other, ok := strings.Cut(key, Separator)
	if !ok || strings.Contains(other, Separator) {
		return fmt.Errorf("invalid relationship key %q: want exactly one %q", key, Separator)
	}
	for _, p := range []string{self, other} {
		if strings.Trim(p, string(family.ParentStep)+string(family.SpouseStep)) != "" {
			return fmt.Errorf("invalid relationship key %q: steps must be P or S", key)
		}
	}
	return nil
}

// Table file formats accepted by [ParseTable].
const (
	FormatTOML = "toml"
	FormatJSON = "json"
)

// ParseTable decodes a table from r. Both formats use the same shape: an
// object keyed by relationship key whose values map gender tags to terms.
func ParseTable(r io.Reader, format string) (*Table, error) {
	raw := map[string]map[string]string{}
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode table: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode table: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported table format %q", format)
	}

	entries := make(map[string]Terms, len(raw))
	for key, cols := range raw {
		terms := make(Terms, len(cols))
		for g, term := range cols {
			terms[family.Gender(g)] = term
		}
		entries[key] = terms
	}
	return NewTable(entries)
}

// LoadTable reads a table file, choosing the format from its extension
// (.toml or .json).
func LoadTable(path string) (*Table, error) {
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		format = FormatTOML
	case ".json":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("table %s: unsupported extension (want .toml or .json)", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ParseTable(f, format)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", path, err)
	}
	return t, nil
}

// Lookup returns the term for key and gender. The second result reports
// whether key is in the table; a known key without an entry for gender
// yields [DistantRelative] and true.
func (t *Table) Lookup(key string, gender family.Gender) (string, bool) {
	terms, ok := t.entries[key]
	if !ok {
		return DistantRelative, false
	}
	if term, ok := terms[gender]; ok && term != "" {
		return term, true
	}
	return DistantRelative, true
}

// Len returns the number of keys.
func (t *Table) Len() int { return len(t.entries) }

// Keys returns every key in sorted order.
func (t *Table) Keys() []string { return slices.Sorted(maps.Keys(t.entries)) }

// MarshalJSON encodes the table with sorted keys, so equal tables encode to
// equal bytes. The encoding is used to fingerprint a table for caching.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.entries)
}
