package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kinship/pkg/cache"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
	kio "github.com/matzehuels/kinship/pkg/io"
	"github.com/matzehuels/kinship/pkg/kinship"
	"github.com/matzehuels/kinship/pkg/observability"
)

// Runner executes queries with caching. It holds no per-query state, so
// one Runner can be shared by every request of the server.
type Runner struct {
	Cache       cache.Cache
	Keyer       cache.Keyer
	Resolver    *kinship.Resolver
	Logger      *log.Logger
	TTL         time.Duration
	Parallelism int

	tableHash string
}

// NewRunner creates a runner. Nil arguments get defaults: a NullCache, the
// DefaultKeyer, a resolver over the default table, and log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, resolver *kinship.Resolver, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if resolver == nil {
		resolver = kinship.NewResolver(nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	// Table.MarshalJSON is deterministic and cannot fail.
	tableHash, _ := cache.HashJSON(resolver.Table())
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Resolver:    resolver,
		Logger:      logger,
		TTL:         DefaultTTL,
		Parallelism: DefaultParallelism,
		tableHash:   tableHash,
	}
}

// =============================================================================
// Load
// =============================================================================

// Load reads a family from a file or a store and builds its graph.
func (r *Runner) Load(ctx context.Context, opts LoadOptions) (*Family, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	source := opts.source()
	observability.Query().OnLoadStart(ctx, source)
	start := time.Now()

	fam, err := r.load(ctx, opts, source)

	people := 0
	if fam != nil {
		people = fam.Graph.Len()
	}
	observability.Query().OnLoadComplete(ctx, source, people, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("loaded family",
		"source", source,
		"people", fam.Graph.Len(),
		"couples", fam.Graph.CoupleCount(),
		"duration", time.Since(start))
	return fam, nil
}

func (r *Runner) load(ctx context.Context, opts LoadOptions, source string) (*Family, error) {
	var data family.Data
	var err error
	if opts.Path != "" {
		data, err = kio.Import(opts.Path)
	} else {
		data, err = opts.Store.Load(ctx, opts.Name)
	}
	if err != nil {
		return nil, err
	}
	return FromData(source, data)
}

// FromData builds a Family from already decoded data.
func FromData(source string, data family.Data) (*Family, error) {
	g, err := family.New(data)
	if err != nil {
		return nil, buildError(source, err)
	}
	hash, err := cache.HashJSON(data)
	if err != nil {
		return nil, fmt.Errorf("hash family: %w", err)
	}
	return &Family{Graph: g, Hash: hash, Source: source}, nil
}

// =============================================================================
// Relation
// =============================================================================

// RelationWithCacheInfo resolves how from is related to to and reports
// whether the answer came from the cache. Unknown names fail with an error
// matching [kinship.ErrPersonNotFound]; such failures are never cached.
func (r *Runner) RelationWithCacheInfo(ctx context.Context, fam *Family, from, to string) (kinship.Relation, bool, error) {
	observability.Query().OnResolveStart(ctx, from, to)
	start := time.Now()

	rel, hit, err := r.relation(ctx, fam, from, to)

	observability.Query().OnResolveComplete(ctx, from, to, rel.Related, time.Since(start), err)
	if err != nil {
		return kinship.Relation{}, false, err
	}
	r.Logger.Debug("resolved",
		"from", from,
		"to", to,
		"key", rel.Key,
		"term", rel.Term,
		"cached", hit)
	return rel, hit, nil
}

// Relation is RelationWithCacheInfo without the cache flag.
func (r *Runner) Relation(ctx context.Context, fam *Family, from, to string) (kinship.Relation, error) {
	rel, _, err := r.RelationWithCacheInfo(ctx, fam, from, to)
	return rel, err
}

func (r *Runner) relation(ctx context.Context, fam *Family, from, to string) (kinship.Relation, bool, error) {
	key := r.Keyer.RelationKey(fam.Hash, r.tableHash, from, to)

	if data, hit, err := r.Cache.Get(ctx, key); err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	} else if hit {
		var rel kinship.Relation
		if err := json.Unmarshal(data, &rel); err == nil {
			observability.Cache().OnCacheHit(ctx, keyTypeRelation)
			return rel, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeRelation)

	rel, err := r.Resolver.Query(ctx, fam.Graph, from, to)
	if err != nil {
		return kinship.Relation{}, false, err
	}

	if data, err := json.Marshal(rel); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeRelation, len(data))
		}
	}
	return rel, false, nil
}

// =============================================================================
// Connections
// =============================================================================

// Connections returns the connection index of name in discovery order:
// the person first, then everyone reachable, nearest first.
func (r *Runner) Connections(ctx context.Context, fam *Family, name string) ([]Connection, error) {
	id, ok := fam.Graph.Lookup(name)
	if !ok {
		return nil, kerrors.Wrap(kerrors.ErrCodePersonNotFound, kinship.ErrPersonNotFound, "%q is not in the family", name)
	}

	key := r.Keyer.ConnectionsKey(fam.Hash, name)
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var conns []Connection
		if err := json.Unmarshal(data, &conns); err == nil {
			observability.Cache().OnCacheHit(ctx, keyTypeConnections)
			return conns, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeConnections)

	idx, err := fam.Graph.ConnectionsContext(ctx, id)
	if err != nil {
		return nil, err
	}
	conns := make([]Connection, 0, idx.Len())
	for _, other := range idx.IDs() {
		p, _ := idx.Path(other)
		conns = append(conns, Connection{Name: fam.Graph.Name(other), Path: p})
	}

	if data, err := json.Marshal(conns); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeConnections, len(data))
		}
	}
	return conns, nil
}

// =============================================================================
// Matrix
// =============================================================================

// Matrix resolves every ordered pair of names, everyone in the family if
// names is empty. Pairs are resolved concurrently, at most Parallelism at a
// time; the first error cancels the rest.
func (r *Runner) Matrix(ctx context.Context, fam *Family, names []string) (*Matrix, error) {
	if len(names) == 0 {
		names = fam.Graph.Names()
	}
	for _, n := range names {
		if _, ok := fam.Graph.Lookup(n); !ok {
			return nil, kerrors.Wrap(kerrors.ErrCodePersonNotFound, kinship.ErrPersonNotFound, "%q is not in the family", n)
		}
	}

	m := &Matrix{Names: names, Relations: make([][]MatrixCell, len(names))}
	for i := range m.Relations {
		m.Relations[i] = make([]MatrixCell, len(names))
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Parallelism, 1))
	for i, from := range names {
		for j, to := range names {
			g.Go(func() error {
				rel, err := r.Relation(gctx, fam, from, to)
				if err != nil {
					return err
				}
				m.Relations[i][j] = MatrixCell{Related: rel.Related, Term: rel.Term, Key: rel.Key}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Logger.Info("resolved matrix",
		"people", len(names),
		"pairs", len(names)*len(names),
		"duration", time.Since(start))
	return m, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
