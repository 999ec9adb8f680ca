package dot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/kinship/pkg/family"
)

func testGraph(t *testing.T) *family.Graph {
	t.Helper()
	g, err := family.New(family.Data{
		Individuals: map[string]family.Gender{"Alice": family.Female, "Bob": family.Male, "Carol": family.Nonbinary},
		Parents:     map[string][]string{"Carol": {"Alice", "Bob"}},
		Couples:     [][2]string{{"Alice", "Bob"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	src := ToDOT(testGraph(t), Options{})

	for _, want := range []string{
		"digraph family {",
		"rankdir=BT;",
		`"Alice" [label="Alice", fillcolor="#f8d7e3"];`,
		`"Carol" [label="Carol", fillcolor="#e6f2d6"];`,
		`"Carol" -> "Alice";`,
		`"Carol" -> "Bob";`,
		`"Alice" -> "Bob" [dir=none, style=dashed, constraint=false];`,
		`{ rank=same; "Alice"; "Bob"; }`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("missing %s in\n%s", want, src)
		}
	}
	if strings.Contains(src, `"Bob" -> "Alice" [dir=none`) {
		t.Error("spouse edge emitted twice")
	}
	if strings.Contains(src, "penwidth") {
		t.Error("nothing should be highlighted")
	}
}

func TestToDOTDeterministic(t *testing.T) {
	g := testGraph(t)
	if ToDOT(g, Options{}) != ToDOT(g, Options{}) {
		t.Error("ToDOT should be deterministic")
	}
}

func TestToDOTOptions(t *testing.T) {
	src := ToDOT(testGraph(t), Options{
		Detailed:  true,
		Highlight: []string{"Carol"},
		Title:     "Carol and Alice",
	})
	if !strings.Contains(src, `label="Alice\nfemale"`) {
		t.Errorf("detailed label missing:\n%s", src)
	}
	if !strings.Contains(src, `label="Carol and Alice";`) {
		t.Errorf("title missing:\n%s", src)
	}
	carol := lineWith(src, `"Carol" [`)
	if !strings.Contains(carol, "penwidth=3") {
		t.Errorf("Carol not highlighted: %s", carol)
	}
	if strings.Contains(lineWith(src, `"Alice" [`), "penwidth") {
		t.Error("Alice should not be highlighted")
	}
}

func lineWith(src, prefix string) string {
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			return line
		}
	}
	return ""
}

func TestRenderDOTPassthrough(t *testing.T) {
	src := ToDOT(testGraph(t), Options{})
	out, err := Render(context.Background(), src, FormatDOT)
	if err != nil || string(out) != src {
		t.Errorf("Render(dot) = %v", err)
	}
	if _, err := Render(context.Background(), src, Format("gif")); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testGraph(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("Carol")) {
		t.Errorf("unexpected SVG: %.200s", svg)
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Error("viewBox not normalized")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if out != want {
		t.Errorf("got %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox: %s", got)
	}
}
