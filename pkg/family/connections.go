package family

import (
	"context"
	"strings"
)

// Step symbols used in a [Path].
const (
	ParentStep Path = "P"
	SpouseStep Path = "S"
)

// Path is the sequence of steps taken from a source person to reach another
// one, written as a string of [ParentStep] and [SpouseStep] symbols. The
// empty path denotes the source itself.
//
// A path produced by [Graph.Connections] contains at most one spouse step.
type Path string

// Len returns the number of steps.
func (p Path) Len() int { return len(p) }

// HasSpouseStep reports whether the path already crosses a marriage.
func (p Path) HasSpouseStep() bool { return strings.Contains(string(p), string(SpouseStep)) }

// Generations returns the number of parent steps.
func (p Path) Generations() int { return strings.Count(string(p), string(ParentStep)) }

// Index maps every person reachable from a fixed source to the shortest
// [Path] leading there. The zero value is an empty index.
type Index struct {
	source ID
	paths  map[ID]Path
	order  []ID
}

// Source returns the person the index was computed from.
func (x Index) Source() ID { return x.source }

// Len returns the number of indexed people, the source included.
func (x Index) Len() int { return len(x.order) }

// Path returns the shortest path from the source to id.
func (x Index) Path(id ID) (Path, bool) {
	p, ok := x.paths[id]
	return p, ok
}

// Contains reports whether id is reachable from the source.
func (x Index) Contains(id ID) bool {
	_, ok := x.paths[id]
	return ok
}

// IDs returns the indexed people in discovery order. The first entry is the
// source. The slice must not be modified.
func (x Index) IDs() []ID { return x.order }

// Connections runs a breadth-first search from id over parent and spouse
// edges and returns the shortest path to every reachable person.
//
// Spouse edges are followed only while the current path has no spouse step,
// so a spouse's spouse, or a spouse's parent's spouse, is never reached
// through a second marriage. Each person is indexed the first time it is
// discovered and never revisited, which bounds the search to O(V+E) and
// guarantees termination on malformed, cyclic parent data.
func (g *Graph) Connections(id ID) Index {
	x, _ := g.ConnectionsContext(context.Background(), id)
	return x
}

// ConnectionsContext is like [Graph.Connections] but checks ctx before every
// dequeue. On cancellation it returns the partial index and ctx.Err().
func (g *Graph) ConnectionsContext(ctx context.Context, id ID) (Index, error) {
	w := walker{
		graph: g,
		ctx:   ctx,
		idx: Index{
			source: id,
			paths:  make(map[ID]Path),
		},
	}
	w.visit(id, "")
	err := w.loop()
	return w.idx, err
}

// walker holds the state of one breadth-first search.
type walker struct {
	graph *Graph
	ctx   context.Context
	idx   Index
	queue []ID
}

func (w *walker) loop() error {
	for len(w.queue) > 0 {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		id := w.queue[0]
		w.queue = w.queue[1:]
		w.expand(id)
	}
	return nil
}

func (w *walker) expand(id ID) {
	path := w.idx.paths[id]
	for _, parent := range w.graph.people[id].Parents {
		w.visit(parent, path+ParentStep)
	}
	if spouse := w.graph.people[id].Spouse; spouse != NoID && !path.HasSpouseStep() {
		w.visit(spouse, path+SpouseStep)
	}
}

// visit records path for id and enqueues it, unless id is already indexed.
func (w *walker) visit(id ID, path Path) {
	if _, seen := w.idx.paths[id]; seen {
		return
	}
	w.idx.paths[id] = path
	w.idx.order = append(w.idx.order, id)
	w.queue = append(w.queue, id)
}
