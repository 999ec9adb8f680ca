package family

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrUnknownPerson is matched by every [ReferenceError]. It is returned
	// (wrapped) by [New] when a parent or couple entry names someone who is
	// not listed among the individuals.
	ErrUnknownPerson = errors.New("unknown person")

	// ErrInvalidName is returned (wrapped) by [New] when an individual's name
	// is empty or contains ':', which separates the paths of a relationship
	// key.
	ErrInvalidName = errors.New("invalid person name")

	// ErrInvalidGender is returned by [New] when an individual's gender tag is
	// not one of [Female], [Male] or [Nonbinary].
	ErrInvalidGender = errors.New("invalid gender")

	// ErrSelfMarriage is returned by [New] when a couple pairs a person with
	// themselves.
	ErrSelfMarriage = errors.New("person cannot be their own spouse")
)

// Gender is the closed set of gender tags a person can carry. The tags are
// also the column keys of a relationship lookup table.
type Gender string

const (
	Female    Gender = "f"
	Male      Gender = "m"
	Nonbinary Gender = "n"
)

// Valid reports whether g is one of the known tags.
func (g Gender) Valid() bool {
	switch g {
	case Female, Male, Nonbinary:
		return true
	}
	return false
}

// String returns the long form of the tag ("female", "male", "nonbinary").
func (g Gender) String() string {
	switch g {
	case Female:
		return "female"
	case Male:
		return "male"
	case Nonbinary:
		return "nonbinary"
	}
	return string(g)
}

// ParseGender accepts either the short tag or the long form, case-sensitive.
func ParseGender(s string) (Gender, error) {
	switch s {
	case "f", "female":
		return Female, nil
	case "m", "male":
		return Male, nil
	case "n", "nonbinary":
		return Nonbinary, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGender, s)
}

// ID is a stable index assigned to each person when the graph is built.
// IDs are dense (0..Len()-1) and follow the lexical order of names, so they
// are reproducible for the same input.
type ID int

// NoID marks an absent reference, e.g. a person without a spouse.
const NoID ID = -1

// Person is a vertex of the family graph. Edges are stored as IDs into the
// owning [Graph], never as pointers, so a person can only ever be linked to
// another person of the same graph.
type Person struct {
	ID      ID
	Name    string
	Gender  Gender
	Parents []ID // ordered as given in the input; not capped at two
	Spouse  ID   // NoID if unmarried
}

// HasSpouse reports whether the person has a spouse edge.
func (p Person) HasSpouse() bool { return p.Spouse != NoID }

// Data is the raw relational description a graph is built from.
type Data struct {
	// Individuals maps every name to its gender tag.
	Individuals map[string]Gender
	// Parents maps a child's name to the ordered names of its parents.
	Parents map[string][]string
	// Couples lists spouse pairs. Each pair produces a symmetric edge.
	Couples [][2]string
}

// ReferenceError reports a name used in the parents map or the couples list
// that does not appear among the individuals.
type ReferenceError struct {
	Name    string // the missing name
	Context string // where it was referenced, e.g. `parents of "Carol"`
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown person %q referenced in %s", e.Name, e.Context)
}

// Is makes errors.Is(err, ErrUnknownPerson) succeed for any ReferenceError.
func (e *ReferenceError) Is(target error) bool { return target == ErrUnknownPerson }

// Graph owns every [Person] of one family, indexed by [ID]. It is built once
// by [New] and never mutated afterwards, which makes it safe to share
// between goroutines for read-only queries.
type Graph struct {
	people   []Person
	byName   map[string]ID
	children [][]ID
	couples  int
}

// New builds a graph from d. Construction is all-or-nothing: on error the
// returned graph is nil.
//
// New fails with a *[ReferenceError] when a parent or spouse name is not an
// individual, with [ErrInvalidName] or [ErrInvalidGender] for malformed
// individuals, and with [ErrSelfMarriage] for a couple of one person. A person
// listed in several couples keeps the spouse from the last entry, and the
// previous partner loses the edge, so spouse edges stay symmetric.
func New(d Data) (*Graph, error) {
	names := slices.Sorted(maps.Keys(d.Individuals))

	g := &Graph{
		people:   make([]Person, len(names)),
		byName:   make(map[string]ID, len(names)),
		children: make([][]ID, len(names)),
	}
	for i, name := range names {
		if name == "" || strings.Contains(name, ":") {
			return nil, fmt.Errorf("%w %q", ErrInvalidName, name)
		}
		gender := d.Individuals[name]
		if !gender.Valid() {
			return nil, fmt.Errorf("%w %q for %q", ErrInvalidGender, string(gender), name)
		}
		id := ID(i)
		g.people[i] = Person{ID: id, Name: name, Gender: gender, Spouse: NoID}
		g.byName[name] = id
	}

	for _, child := range slices.Sorted(maps.Keys(d.Parents)) {
		cid, ok := g.byName[child]
		if !ok {
			return nil, &ReferenceError{Name: child, Context: "parents"}
		}
		for _, parent := range d.Parents[child] {
			pid, ok := g.byName[parent]
			if !ok {
				return nil, &ReferenceError{Name: parent, Context: fmt.Sprintf("parents of %q", child)}
			}
			g.people[cid].Parents = append(g.people[cid].Parents, pid)
			g.children[pid] = append(g.children[pid], cid)
		}
	}

	for _, c := range d.Couples {
		a, ok := g.byName[c[0]]
		if !ok {
			return nil, &ReferenceError{Name: c[0], Context: "couples"}
		}
		b, ok := g.byName[c[1]]
		if !ok {
			return nil, &ReferenceError{Name: c[1], Context: "couples"}
		}
		if a == b {
			return nil, fmt.Errorf("%w: %q", ErrSelfMarriage, c[0])
		}
		g.marry(a, b)
	}

	return g, nil
}

func (g *Graph) marry(a, b ID) {
	for _, id := range []ID{a, b} {
		if prev := g.people[id].Spouse; prev != NoID {
			g.people[prev].Spouse = NoID
			g.couples--
		}
	}
	g.people[a].Spouse = b
	g.people[b].Spouse = a
	g.couples++
}

// Len returns the number of people in the graph.
func (g *Graph) Len() int { return len(g.people) }

// CoupleCount returns the number of spouse edges (each counted once).
func (g *Graph) CoupleCount() int { return g.couples }

// ParentEdgeCount returns the total number of child→parent edges.
func (g *Graph) ParentEdgeCount() int {
	n := 0
	for _, p := range g.people {
		n += len(p.Parents)
	}
	return n
}

// Person looks a person up by name.
func (g *Graph) Person(name string) (Person, bool) {
	id, ok := g.byName[name]
	if !ok {
		return Person{}, false
	}
	return g.people[id], true
}

// PersonByID returns the person with the given ID. It panics if id is out of
// range, like a slice index would.
func (g *Graph) PersonByID(id ID) Person { return g.people[id] }

// Lookup returns the ID for name.
func (g *Graph) Lookup(name string) (ID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Name returns the name for id.
func (g *Graph) Name(id ID) string { return g.people[id].Name }

// People returns a copy of every person, sorted by name.
func (g *Graph) People() []Person { return slices.Clone(g.people) }

// Names returns every name in sorted order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.people))
	for i, p := range g.people {
		names[i] = p.Name
	}
	return names
}

// Parents returns the parent IDs of id. The slice must not be modified.
func (g *Graph) Parents(id ID) []ID { return g.people[id].Parents }

// Spouse returns the spouse of id, or NoID.
func (g *Graph) Spouse(id ID) ID { return g.people[id].Spouse }

// Children returns the IDs of everyone listing id as a parent, in ID order.
// The slice must not be modified.
func (g *Graph) Children(id ID) []ID { return g.children[id] }

// Data reconstructs the raw description of the graph. Couples are listed
// once each, ordered by the name of the first partner. Building a graph from
// the result yields an equivalent graph.
func (g *Graph) Data() Data {
	d := Data{
		Individuals: make(map[string]Gender, len(g.people)),
		Parents:     make(map[string][]string),
	}
	for _, p := range g.people {
		d.Individuals[p.Name] = p.Gender
		if len(p.Parents) > 0 {
			names := make([]string, len(p.Parents))
			for i, id := range p.Parents {
				names[i] = g.people[id].Name
			}
			d.Parents[p.Name] = names
		}
		if p.Spouse != NoID && p.ID < p.Spouse {
			d.Couples = append(d.Couples, [2]string{p.Name, g.people[p.Spouse].Name})
		}
	}
	return d
}
