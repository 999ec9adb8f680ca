package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinship/pkg/cache"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
	"github.com/matzehuels/kinship/pkg/kinship"
	"github.com/matzehuels/kinship/pkg/observability"
	"github.com/matzehuels/kinship/pkg/store/sqlite"
)

const familyJSON = `{
  "individuals": {"Alice": "f", "Bob": "m", "Carol": "f", "Dan": "m", "Dave": "m", "Eve": "f"},
  "parents": {"Carol": ["Alice", "Bob"], "Dan": ["Alice", "Bob"]},
  "couples": [["Alice", "Bob"]]
}`

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func writeFamily(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "family.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil, quietLogger())
}

func loadFamily(t *testing.T, r *Runner) *Family {
	t.Helper()
	fam, err := r.Load(context.Background(), LoadOptions{Path: writeFamily(t, familyJSON)})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return fam
}

func TestLoadOptionsValidate(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	tests := []struct {
		name    string
		opts    LoadOptions
		wantErr bool
	}{
		{"path", LoadOptions{Path: "family.json"}, false},
		{"stored", LoadOptions{Name: "smiths", Store: db}, false},
		{"none", LoadOptions{}, true},
		{"both", LoadOptions{Path: "family.json", Name: "smiths", Store: db}, true},
		{"no store", LoadOptions{Name: "smiths"}, true},
		{"bad name", LoadOptions{Name: "-x", Store: db}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	r := newRunner(t)
	fam := loadFamily(t, r)

	if fam.Graph.Len() != 6 {
		t.Errorf("Len = %d", fam.Graph.Len())
	}
	if len(fam.Hash) != 64 {
		t.Errorf("Hash = %q", fam.Hash)
	}

	again := loadFamily(t, r)
	if again.Hash != fam.Hash {
		t.Error("same content should hash equally")
	}
}

func TestLoadFromStore(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	r := newRunner(t)
	fromFile := loadFamily(t, r)
	if err := db.Save(ctx, "smiths", fromFile.Graph.Data()); err != nil {
		t.Fatal(err)
	}

	fam, err := r.Load(ctx, LoadOptions{Name: "smiths", Store: db})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fam.Source != "store:smiths" || fam.Graph.Len() != 6 {
		t.Errorf("fam = %+v", fam)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code kerrors.Code
	}{
		{"unknown parent", `{"individuals": {"A": "f"}, "parents": {"A": ["Z"]}}`, kerrors.ErrCodeInvalidReference},
		{"unknown spouse", `{"individuals": {"A": "f"}, "couples": [["A", "Z"]]}`, kerrors.ErrCodeInvalidReference},
		{"self marriage", `{"individuals": {"A": "f"}, "couples": [["A", "A"]]}`, kerrors.ErrCodeInvalidInput},
		{"bad gender", `{"individuals": {"A": "q"}}`, kerrors.ErrCodeInvalidGender},
		{"malformed", `{`, kerrors.ErrCodeInvalidFormat},
	}
	r := newRunner(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Load(context.Background(), LoadOptions{Path: writeFamily(t, tt.doc)})
			if got := kerrors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}

	_, err := r.Load(context.Background(), LoadOptions{Path: filepath.Join(t.TempDir(), "none.json")})
	if kerrors.GetCode(err) != kerrors.ErrCodeFileNotFound {
		t.Errorf("missing file: %v", err)
	}
}

func TestRelation(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	fam := loadFamily(t, r)

	tests := []struct {
		from, to string
		want     string
	}{
		{"Alice", "Carol", "Alice is Carol's mother"},
		{"Carol", "Dan", "Carol is Dan's sister"},
		{"Bob", "Alice", "Bob is Alice's husband"},
		{"Dave", "Eve", "Dave is not related to Eve"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"-"+tt.to, func(t *testing.T) {
			rel, err := r.Relation(ctx, fam, tt.from, tt.to)
			if err != nil {
				t.Fatal(err)
			}
			if got := rel.Sentence(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelationCached(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	fam := loadFamily(t, r)

	first, hit, err := r.RelationWithCacheInfo(ctx, fam, "Alice", "Carol")
	if err != nil || hit {
		t.Fatalf("first = %v, hit %v", err, hit)
	}
	second, hit, err := r.RelationWithCacheInfo(ctx, fam, "Alice", "Carol")
	if err != nil || !hit {
		t.Fatalf("second = %v, hit %v", err, hit)
	}
	if first != second {
		t.Errorf("cached relation differs: %+v vs %+v", first, second)
	}
}

func TestRelationUnknownPerson(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	fam := loadFamily(t, r)

	for i := 0; i < 2; i++ {
		_, err := r.Relation(ctx, fam, "Alice", "Mallory")
		if !errors.Is(err, kinship.ErrPersonNotFound) {
			t.Fatalf("attempt %d: err = %v", i, err)
		}
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestRelationHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	h := &countingCacheHooks{}
	observability.SetCacheHooks(h)

	ctx := context.Background()
	r := newRunner(t)
	fam := loadFamily(t, r)
	for i := 0; i < 3; i++ {
		if _, err := r.Relation(ctx, fam, "Carol", "Bob"); err != nil {
			t.Fatal(err)
		}
	}
	if h.misses != 1 || h.sets != 1 || h.hits != 2 {
		t.Errorf("hits=%d misses=%d sets=%d, want 2/1/1", h.hits, h.misses, h.sets)
	}
}

func TestConnections(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	fam := loadFamily(t, r)

	for round := 0; round < 2; round++ {
		conns, err := r.Connections(ctx, fam, "Carol")
		if err != nil {
			t.Fatal(err)
		}
		want := []Connection{{"Carol", ""}, {"Alice", "P"}, {"Bob", "P"}}
		if len(conns) != len(want) {
			t.Fatalf("round %d: conns = %v", round, conns)
		}
		for i := range want {
			if conns[i] != want[i] {
				t.Errorf("round %d: conns[%d] = %v, want %v", round, i, conns[i], want[i])
			}
		}
	}

	if _, err := r.Connections(ctx, fam, "Mallory"); !errors.Is(err, kinship.ErrPersonNotFound) {
		t.Errorf("unknown person: %v", err)
	}
}

func TestMatrix(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil, quietLogger())
	r.Parallelism = 3
	fam := loadFamily(t, r)

	m, err := r.Matrix(ctx, fam, []string{"Alice", "Carol", "Eve"})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Relations[0][1].Term; got != "mother" {
		t.Errorf("Alice→Carol = %q", got)
	}
	if got := m.Relations[1][0].Term; got != "daughter" {
		t.Errorf("Carol→Alice = %q", got)
	}
	if got := m.Relations[1][1].Key; got != kinship.Separator {
		t.Errorf("Carol→Carol key = %q", got)
	}
	if m.Relations[2][0].Related || m.Relations[0][2].Related {
		t.Error("Eve should be unrelated")
	}

	all, err := r.Matrix(ctx, fam, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Names) != fam.Graph.Len() {
		t.Errorf("Names = %v", all.Names)
	}

	if _, err := r.Matrix(ctx, fam, []string{"Alice", "Mallory"}); !errors.Is(err, kinship.ErrPersonNotFound) {
		t.Errorf("unknown person: %v", err)
	}
}

func TestMatrixCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, nil, nil, quietLogger())
	fam := loadFamily(t, r)

	if _, err := r.Matrix(ctx, fam, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFromData(t *testing.T) {
	_, err := FromData("test", family.Data{
		Individuals: map[string]family.Gender{"A": family.Female},
		Couples:     [][2]string{{"A", "B"}},
	})
	if !errors.Is(err, family.ErrUnknownPerson) {
		t.Errorf("err = %v", err)
	}
}
