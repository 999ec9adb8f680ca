// Package store persists named families.
//
// A family file is the natural input of a one-off query, but the server and
// repeated CLI use benefit from keeping families by name. [Store] is the
// backend-neutral contract; [github.com/matzehuels/kinship/pkg/store/sqlite]
// (embedded, the default) and [github.com/matzehuels/kinship/pkg/store/mongo]
// implement it.
//
// Stores hold the raw [family.Data], never a built graph: loading always goes
// through [family.New], so a stored family is validated again on every use.
package store

import (
	"context"
	"errors"
	"time"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
)

// ErrNotFound is returned by Load and Delete for an unknown family name.
var ErrNotFound = errors.New("family not found")

// Summary describes a stored family without loading it.
type Summary struct {
	Name      string    `json:"name"`
	People    int       `json:"people"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a named collection of families.
type Store interface {
	// Save creates or replaces the family called name.
	Save(ctx context.Context, name string, data family.Data) error

	// Load returns the family called name, or an error matching ErrNotFound.
	Load(ctx context.Context, name string) (family.Data, error)

	// List returns a summary of every family, sorted by name.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes the family called name, or returns an error matching
	// ErrNotFound.
	Delete(ctx context.Context, name string) error

	Close() error
}

// NotFound wraps ErrNotFound with the family name and the FAMILY_NOT_FOUND
// code, for backends to return.
func NotFound(name string) error {
	return kerrors.Wrap(kerrors.ErrCodeFamilyNotFound, ErrNotFound, "family %q", name)
}
