package family

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// extended builds three generations:
//
//	Gma = Gpa
//	  |
//	Alice = Bob        Ina = Jon
//	    |                 |
//	  Carol ========== Kurt
//	    |
//	  Lena
func extended(t *testing.T) *Graph {
	t.Helper()
	g, err := New(Data{
		Individuals: map[string]Gender{
			"Gma": Female, "Gpa": Male, "Alice": Female, "Bob": Male,
			"Carol": Female, "Ina": Female, "Jon": Male, "Kurt": Male, "Lena": Nonbinary,
		},
		Parents: map[string][]string{
			"Alice": {"Gma", "Gpa"},
			"Carol": {"Alice", "Bob"},
			"Kurt":  {"Ina", "Jon"},
			"Lena":  {"Carol", "Kurt"},
		},
		Couples: [][2]string{{"Gma", "Gpa"}, {"Alice", "Bob"}, {"Ina", "Jon"}, {"Carol", "Kurt"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func pathTo(t *testing.T, g *Graph, x Index, name string) (Path, bool) {
	t.Helper()
	id, ok := g.Lookup(name)
	if !ok {
		t.Fatalf("unknown name %q", name)
	}
	return x.Path(id)
}

func TestConnectionsSourceIsEmptyPath(t *testing.T) {
	g := extended(t)
	for _, p := range g.People() {
		x := g.Connections(p.ID)
		path, ok := x.Path(p.ID)
		if !ok || path != "" {
			t.Errorf("Connections(%s)[%s] = %q, %v; want empty path", p.Name, p.Name, path, ok)
		}
		if x.IDs()[0] != p.ID || x.Source() != p.ID {
			t.Errorf("Connections(%s) should start at the source", p.Name)
		}
	}
}

func TestConnectionsPaths(t *testing.T) {
	g := extended(t)
	carol, _ := g.Lookup("Carol")
	x := g.Connections(carol)

	want := map[string]Path{
		"Carol": "",
		"Alice": "P",
		"Bob":   "P",
		"Kurt":  "S",
		"Gma":   "PP",
		"Gpa":   "PP",
		"Ina":   "SP",
		"Jon":   "SP",
	}
	for name, wantPath := range want {
		got, ok := pathTo(t, g, x, name)
		if !ok {
			t.Errorf("%s not reachable from Carol", name)
			continue
		}
		if got != wantPath {
			t.Errorf("path Carol→%s = %q, want %q", name, got, wantPath)
		}
	}
	if _, ok := pathTo(t, g, x, "Lena"); ok {
		t.Error("children are not reachable through parent and spouse edges")
	}
	if x.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", x.Len(), len(want))
	}
}

func TestConnectionsDirectParent(t *testing.T) {
	g := extended(t)
	for _, p := range g.People() {
		x := g.Connections(p.ID)
		for _, parent := range p.Parents {
			if path, _ := x.Path(parent); path != ParentStep {
				t.Errorf("path %s→%s = %q, want %q", p.Name, g.Name(parent), path, ParentStep)
			}
		}
	}
}

func TestConnectionsSpouseSymmetry(t *testing.T) {
	g := extended(t)
	for _, a := range g.People() {
		xa := g.Connections(a.ID)
		for _, b := range g.People() {
			if path, ok := xa.Path(b.ID); !ok || path != SpouseStep {
				continue
			}
			back, ok := g.Connections(b.ID).Path(a.ID)
			if !ok || back != SpouseStep {
				t.Errorf("%s→%s is %q but %s→%s is %q", a.Name, b.Name, SpouseStep, b.Name, a.Name, back)
			}
		}
	}
}

func TestConnectionsAtMostOneSpouseStep(t *testing.T) {
	g := extended(t)
	for _, p := range g.People() {
		x := g.Connections(p.ID)
		for _, id := range x.IDs() {
			path, _ := x.Path(id)
			if n := strings.Count(string(path), string(SpouseStep)); n > 1 {
				t.Errorf("path %s→%s = %q has %d spouse steps", p.Name, g.Name(id), path, n)
			}
			if i := strings.Index(string(path), string(SpouseStep)); i >= 0 && strings.Contains(string(path[i+1:]), string(SpouseStep)) {
				t.Errorf("path %q takes a spouse step after a spouse step", path)
			}
		}
	}
}

func TestConnectionsNoSecondMarriage(t *testing.T) {
	// Zoe's spouse Yan has a mother Xia, married to Wes who is not Yan's
	// parent. Wes is only reachable through a second spouse step.
	g, err := New(Data{
		Individuals: map[string]Gender{"Zoe": Female, "Yan": Male, "Xia": Female, "Wes": Male},
		Parents:     map[string][]string{"Yan": {"Xia"}},
		Couples:     [][2]string{{"Zoe", "Yan"}, {"Xia", "Wes"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	zoe, _ := g.Lookup("Zoe")
	x := g.Connections(zoe)

	if path, _ := pathTo(t, g, x, "Xia"); path != "SP" {
		t.Errorf("path Zoe→Xia = %q, want SP", path)
	}
	if _, ok := pathTo(t, g, x, "Wes"); ok {
		t.Error("Wes must not be reachable from Zoe")
	}

	yan, _ := g.Lookup("Yan")
	if path, _ := pathTo(t, g, g.Connections(yan), "Wes"); path != "PS" {
		t.Errorf("path Yan→Wes = %q, want PS", path)
	}
}

func TestConnectionsIsolated(t *testing.T) {
	g, err := New(Data{Individuals: map[string]Gender{"Solo": Nonbinary, "Other": Male}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	solo, _ := g.Lookup("Solo")
	x := g.Connections(solo)
	if x.Len() != 1 || !x.Contains(solo) {
		t.Errorf("isolated index = %v, want only the source", x.IDs())
	}
}

func TestConnectionsTerminatesOnCycle(t *testing.T) {
	// Malformed input: A is B's parent and B is A's parent.
	g, err := New(Data{
		Individuals: map[string]Gender{"A": Female, "B": Male, "C": Female},
		Parents:     map[string][]string{"A": {"B"}, "B": {"A", "C"}, "C": {"C"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, _ := g.Lookup("A")
	x := g.Connections(a)
	if x.Len() != 3 {
		t.Errorf("Len() = %d, want 3", x.Len())
	}
	if path, _ := pathTo(t, g, x, "C"); path != "PP" {
		t.Errorf("path A→C = %q, want PP", path)
	}
}

func TestConnectionsShortestOfTwoRoutes(t *testing.T) {
	// Eli is both Fay's parent and her grandparent (through Gus).
	g, err := New(Data{
		Individuals: map[string]Gender{"Eli": Male, "Fay": Female, "Gus": Male},
		Parents:     map[string][]string{"Fay": {"Gus", "Eli"}, "Gus": {"Eli"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fay, _ := g.Lookup("Fay")
	if path, _ := pathTo(t, g, g.Connections(fay), "Eli"); path != "P" {
		t.Errorf("path Fay→Eli = %q, want P", path)
	}
}

func TestConnectionsContextIndexComplete(t *testing.T) {
	g := extended(t)
	lena, _ := g.Lookup("Lena")

	x, err := g.ConnectionsContext(context.Background(), lena)
	if err != nil {
		t.Fatalf("ConnectionsContext: %v", err)
	}
	if x.Len() != g.Len() || len(x.IDs()) != g.Len() {
		t.Fatalf("Len = %d, IDs = %d, want %d", x.Len(), len(x.IDs()), g.Len())
	}
	for _, id := range x.IDs() {
		if !x.Contains(id) {
			t.Errorf("%s listed but has no path", g.Name(id))
		}
	}
}

func TestConnectionsContextCancelled(t *testing.T) {
	g := extended(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lena, _ := g.Lookup("Lena")
	x, err := g.ConnectionsContext(ctx, lena)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !x.Contains(lena) {
		t.Error("partial index should still contain the source")
	}
}

func TestPath(t *testing.T) {
	tests := []struct {
		path        Path
		len, gens   int
		spouseSteps bool
	}{
		{"", 0, 0, false},
		{"P", 1, 1, false},
		{"S", 1, 0, true},
		{"PSP", 3, 2, true},
		{"PPP", 3, 3, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.path), func(t *testing.T) {
			if tt.path.Len() != tt.len {
				t.Errorf("Len() = %d, want %d", tt.path.Len(), tt.len)
			}
			if tt.path.Generations() != tt.gens {
				t.Errorf("Generations() = %d, want %d", tt.path.Generations(), tt.gens)
			}
			if tt.path.HasSpouseStep() != tt.spouseSteps {
				t.Errorf("HasSpouseStep() = %v, want %v", tt.path.HasSpouseStep(), tt.spouseSteps)
			}
		})
	}
}
