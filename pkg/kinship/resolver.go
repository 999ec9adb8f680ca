package kinship

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
)

// ErrPersonNotFound is returned (wrapped, with code PERSON_NOT_FOUND) by
// [Resolver.Query] when a name is not part of the family. It is distinct
// from a successful answer with Related == false.
var ErrPersonNotFound = errors.New("person not found")

// Relation is the answer to "how is From related to To".
type Relation struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Related bool   `json:"related"`

	// The fields below are set only when Related is true.
	Term     string      `json:"term,omitempty"`
	Key      string      `json:"key,omitempty"`       // FromPath + Separator + ToPath
	Via      string      `json:"via,omitempty"`       // the shared relative the key was built from
	FromPath family.Path `json:"from_path,omitempty"` // From → Via
	ToPath   family.Path `json:"to_path,omitempty"`   // To → Via
	Known    bool        `json:"known,omitempty"`     // Key was found in the table
}

// Sentence renders the relation the way the command line prints it.
func (r Relation) Sentence() string {
	if !r.Related {
		return fmt.Sprintf("%s is not related to %s", r.From, r.To)
	}
	return fmt.Sprintf("%s is %s's %s", r.From, r.To, r.Term)
}

// People lists From, To and, when it is a third person, Via. Diagrams
// highlight these names.
func (r Relation) People() []string {
	names := []string{r.From, r.To}
	if r.Related && r.Via != r.From && r.Via != r.To {
		names = append(names, r.Via)
	}
	return names
}

// Resolver translates the shortest connection between two people into a
// kinship term using an injected [Table]. It holds no per-query state and is
// safe for concurrent use.
type Resolver struct {
	table *Table
}

// NewResolver returns a resolver backed by t. A nil table means
// [DefaultTable].
func NewResolver(t *Table) *Resolver {
	if t == nil {
		t = DefaultTable()
	}
	return &Resolver{table: t}
}

// Table returns the lookup table the resolver was built with.
func (r *Resolver) Table() *Table { return r.table }

// Resolve describes self's relation to other.
//
// Both connection indices are intersected; for every shared relative the
// key selfPath:otherPath is formed and the shortest key wins. Keys of equal
// length are ordered lexically, and equal keys by the shared relative's
// name, so the answer never depends on map iteration order. Two people
// without a shared relative are reported with Related == false.
func (r *Resolver) Resolve(g *family.Graph, self, other family.ID) Relation {
	rel, _ := r.ResolveContext(context.Background(), g, self, other)
	return rel
}

// ResolveContext is like [Resolver.Resolve] but stops early when ctx is
// cancelled.
func (r *Resolver) ResolveContext(ctx context.Context, g *family.Graph, self, other family.ID) (Relation, error) {
	rel := Relation{From: g.Name(self), To: g.Name(other)}

	selfIdx, err := g.ConnectionsContext(ctx, self)
	if err != nil {
		return rel, err
	}
	otherIdx, err := g.ConnectionsContext(ctx, other)
	if err != nil {
		return rel, err
	}

	best, ok := shortestShared(g, selfIdx, otherIdx)
	if !ok {
		return rel, nil
	}

	rel.Related = true
	rel.Via = g.Name(best.via)
	rel.FromPath = best.selfPath
	rel.ToPath = best.otherPath
	rel.Key = best.key
	rel.Term, rel.Known = r.table.Lookup(best.key, g.PersonByID(self).Gender)
	return rel, nil
}

// Query resolves a relation by name. Unknown names fail with
// [ErrPersonNotFound]; everything else is answered.
func (r *Resolver) Query(ctx context.Context, g *family.Graph, from, to string) (Relation, error) {
	self, ok := g.Lookup(from)
	if !ok {
		return Relation{}, kerrors.Wrap(kerrors.ErrCodePersonNotFound, ErrPersonNotFound, "%q is not in the family", from)
	}
	other, ok := g.Lookup(to)
	if !ok {
		return Relation{}, kerrors.Wrap(kerrors.ErrCodePersonNotFound, ErrPersonNotFound, "%q is not in the family", to)
	}
	return r.ResolveContext(ctx, g, self, other)
}

type candidate struct {
	via       family.ID
	selfPath  family.Path
	otherPath family.Path
	key       string
}

// less orders candidates by key length, then key, then shared relative name.
func (c candidate) less(o candidate, g *family.Graph) bool {
	if len(c.key) != len(o.key) {
		return len(c.key) < len(o.key)
	}
	if c.key != o.key {
		return c.key < o.key
	}
	return g.Name(c.via) < g.Name(o.via)
}

func shortestShared(g *family.Graph, selfIdx, otherIdx family.Index) (candidate, bool) {
	var (
		best  candidate
		found bool
	)
	for _, id := range selfIdx.IDs() {
		otherPath, ok := otherIdx.Path(id)
		if !ok {
			continue
		}
		selfPath, _ := selfIdx.Path(id)
		c := candidate{
			via:       id,
			selfPath:  selfPath,
			otherPath: otherPath,
			key:       string(selfPath) + Separator + string(otherPath),
		}
		if !found || c.less(best, g) {
			best, found = c, true
		}
	}
	return best, found
}
