// Package pipeline is the query pipeline shared by the CLI and the HTTP
// server: load a family, build its graph, resolve relations.
//
// # Stages
//
//  1. Load: read a family file or a stored family and build the graph.
//  2. Resolve: answer relation and connection queries against the graph,
//     going through the result cache.
//
// A loaded [Family] carries the content hash of its data, which together with
// the hash of the lookup table keys the cache. Queries never mutate the graph,
// so one Family can serve any number of concurrent queries.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, nil, logger)
//	fam, err := runner.Load(ctx, pipeline.LoadOptions{Path: "family.json"})
//	if err != nil {
//	    return err
//	}
//	rel, err := runner.Relation(ctx, fam, "Alice", "Carol")
//	fmt.Println(rel.Sentence()) // Alice is Carol's mother
package pipeline

import (
	"errors"
	"time"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
	"github.com/matzehuels/kinship/pkg/store"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTTL is how long a resolved relation stays cached. Keys change
	// with the content they depend on, so this only bounds cache growth.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultParallelism bounds the goroutines used by [Runner.Matrix].
	DefaultParallelism = 8
)

// Cache key types reported to observability hooks.
const (
	keyTypeRelation    = "relation"
	keyTypeConnections = "connections"
)

// =============================================================================
// Options
// =============================================================================

// LoadOptions selects where a family comes from. Exactly one of Path and
// Name must be set; Name requires Store.
type LoadOptions struct {
	// Path is a family file (.json, .toml, .yaml).
	Path string

	// Name is a family kept in Store.
	Name  string
	Store store.Store
}

// Validate checks that the options pick exactly one source.
func (o LoadOptions) Validate() error {
	switch {
	case o.Path == "" && o.Name == "":
		return kerrors.New(kerrors.ErrCodeInvalidInput, "a family file or a stored family name is required")
	case o.Path != "" && o.Name != "":
		return kerrors.New(kerrors.ErrCodeInvalidInput, "give either a family file or a stored family name, not both")
	case o.Path != "":
		return kerrors.ValidatePath(o.Path)
	case o.Store == nil:
		return kerrors.New(kerrors.ErrCodeInvalidInput, "no store configured for family %q", o.Name)
	}
	return kerrors.ValidateFamilyName(o.Name)
}

// source names the origin for logs and hooks.
func (o LoadOptions) source() string {
	if o.Path != "" {
		return o.Path
	}
	return "store:" + o.Name
}

// =============================================================================
// Results
// =============================================================================

// Family is a loaded, validated family graph.
type Family struct {
	Graph  *family.Graph
	Hash   string // content hash of the family data
	Source string // file path or store:<name>
}

// Connection is one entry of a connection index.
type Connection struct {
	Name string      `json:"name"`
	Path family.Path `json:"path"`
}

// Matrix holds the relation of every ordered pair of Names:
// Relations[i][j] is how Names[i] is related to Names[j].
type Matrix struct {
	Names     []string       `json:"names"`
	Relations [][]MatrixCell `json:"relations"`
}

// MatrixCell is the short form of a relation kept in a [Matrix].
type MatrixCell struct {
	Related bool   `json:"related"`
	Term    string `json:"term,omitempty"`
	Key     string `json:"key,omitempty"`
}

// buildError maps family construction errors to coded errors.
func buildError(source string, err error) error {
	var ref *family.ReferenceError
	switch {
	case errors.As(err, &ref):
		return kerrors.Wrap(kerrors.ErrCodeInvalidReference, err, "%s", source)
	case errors.Is(err, family.ErrInvalidGender):
		return kerrors.Wrap(kerrors.ErrCodeInvalidGender, err, "%s", source)
	case errors.Is(err, family.ErrInvalidName):
		return kerrors.Wrap(kerrors.ErrCodeInvalidName, err, "%s", source)
	}
	return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "%s", source)
}
