package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
	"github.com/matzehuels/kinship/pkg/kinship"
	"github.com/matzehuels/kinship/pkg/render/dot"
)

type errorBody struct {
	Error string       `json:"error"`
	Code  kerrors.Code `json:"code"`
}

// personBody is the JSON shape of a person. Edges are given by name.
type personBody struct {
	Name     string   `json:"name"`
	Gender   string   `json:"gender"`
	Parents  []string `json:"parents"`
	Spouse   string   `json:"spouse,omitempty"`
	Children []string `json:"children"`
}

type relationBody struct {
	kinship.Relation
	Sentence string `json:"sentence"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: kerrors.UserMessage(err), Code: kerrors.GetCode(err)}
	var rl *kerrors.RateLimitedError
	switch {
	case errors.As(err, &rl):
		body.Error, body.Code = rl.Error(), rl.Code()
	case body.Code == "":
		body.Code = kerrors.ErrCodeInternal
	}
	writeJSON(w, kerrors.HTTPStatus(err), body)
}

func (s *Server) personBody(p family.Person) personBody {
	g := s.family.Graph
	b := personBody{
		Name:     p.Name,
		Gender:   string(p.Gender),
		Parents:  make([]string, 0, len(p.Parents)),
		Children: make([]string, 0, len(g.Children(p.ID))),
	}
	for _, id := range p.Parents {
		b.Parents = append(b.Parents, g.Name(id))
	}
	for _, id := range g.Children(p.ID) {
		b.Children = append(b.Children, g.Name(id))
	}
	if p.HasSpouse() {
		b.Spouse = g.Name(p.Spouse)
	}
	return b
}

// nameParam reads a path parameter, undoing any percent-encoding chi left in.
func nameParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func (s *Server) lookup(name string) (family.Person, error) {
	if err := kerrors.ValidatePersonName(name); err != nil {
		return family.Person{}, err
	}
	p, ok := s.family.Graph.Person(name)
	if !ok {
		return family.Person{}, kerrors.Wrap(kerrors.ErrCodePersonNotFound, kinship.ErrPersonNotFound, "%q is not in the family", name)
	}
	return p, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"people":  s.family.Graph.Len(),
		"couples": s.family.Graph.CoupleCount(),
	})
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	people := s.family.Graph.People()
	out := make([]personBody, len(people))
	for i, p := range people {
		out[i] = s.personBody(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePerson(w http.ResponseWriter, r *http.Request) {
	p, err := s.lookup(nameParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.personBody(p))
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	p, err := s.lookup(nameParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	conns, err := s.runner.Connections(r.Context(), s.family, p.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conns)
}

func (s *Server) handleRelation(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	for _, name := range []string{from, to} {
		if err := kerrors.ValidatePersonName(name); err != nil {
			writeError(w, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "query needs from and to"))
			return
		}
	}
	rel, err := s.runner.Relation(r.Context(), s.family, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relationBody{Relation: rel, Sentence: rel.Sentence()})
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	var names []string
	if q := r.URL.Query().Get("names"); q != "" {
		for _, n := range strings.Split(q, ",") {
			names = append(names, strings.TrimSpace(n))
		}
	}
	m, err := s.runner.Matrix(r.Context(), s.family, names)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	format := dot.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = dot.FormatSVG
	}
	var contentType string
	switch format {
	case dot.FormatSVG:
		contentType = "image/svg+xml"
	case dot.FormatDOT:
		contentType = "text/vnd.graphviz"
	default:
		writeError(w, kerrors.New(kerrors.ErrCodeInvalidFormat, "unsupported graph format %q (want svg or dot)", format))
		return
	}

	opts, err := s.graphOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	src := dot.ToDOT(s.family.Graph, opts)
	out, err := dot.Render(r.Context(), src, format)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(out)
}

// graphOptions highlights the relation named by the from and to query
// parameters. Both or neither must be given.
func (s *Server) graphOptions(r *http.Request) (dot.Options, error) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" && to == "" {
		return dot.Options{}, nil
	}
	if from == "" || to == "" {
		return dot.Options{}, kerrors.New(kerrors.ErrCodeInvalidInput, "from and to must be given together")
	}
	for _, name := range []string{from, to} {
		if _, err := s.lookup(name); err != nil {
			return dot.Options{}, err
		}
	}
	rel, err := s.runner.Relation(r.Context(), s.family, from, to)
	if err != nil {
		return dot.Options{}, err
	}
	return dot.Options{Highlight: rel.People(), Title: rel.Sentence()}, nil
}
