package io

import (
	"path/filepath"
	"slices"
	"strings"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatTOML, FormatYAML}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if f == "yml" {
		f = FormatYAML
	}
	if !slices.Contains(Formats, f) {
		return "", kerrors.New(kerrors.ErrCodeInvalidFormat, "unsupported format %q (want json, toml or yaml)", s)
	}
	return f, nil
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", kerrors.New(kerrors.ErrCodeInvalidFormat, "cannot infer format of %s: no extension", path)
	}
	return ParseFormat(ext)
}

// document is the on-disk shape shared by all formats.
type document struct {
	Individuals map[string]string   `json:"individuals" toml:"individuals" yaml:"individuals"`
	Parents     map[string][]string `json:"parents,omitempty" toml:"parents,omitempty" yaml:"parents,omitempty"`
	Couples     [][]string          `json:"couples,omitempty" toml:"couples,omitempty" yaml:"couples,omitempty"`
}

func (d document) toData() (family.Data, error) {
	data := family.Data{
		Individuals: make(map[string]family.Gender, len(d.Individuals)),
		Parents:     make(map[string][]string, len(d.Parents)),
		Couples:     make([][2]string, 0, len(d.Couples)),
	}
	for name, tag := range d.Individuals {
		g, err := family.ParseGender(tag)
		if err != nil {
			return family.Data{}, kerrors.Wrap(kerrors.ErrCodeInvalidGender, err, "individual %q", name)
		}
		data.Individuals[name] = g
	}
	for child, parents := range d.Parents {
		data.Parents[child] = slices.Clone(parents)
	}
	for i, c := range d.Couples {
		if len(c) != 2 {
			return family.Data{}, kerrors.New(kerrors.ErrCodeInvalidFormat, "couple %d: want 2 names, got %d", i, len(c))
		}
		data.Couples = append(data.Couples, [2]string{c[0], c[1]})
	}
	return data, nil
}

func fromData(data family.Data) document {
	d := document{
		Individuals: make(map[string]string, len(data.Individuals)),
	}
	for name, g := range data.Individuals {
		d.Individuals[name] = string(g)
	}
	if len(data.Parents) > 0 {
		d.Parents = make(map[string][]string, len(data.Parents))
		for child, parents := range data.Parents {
			d.Parents[child] = slices.Clone(parents)
		}
	}
	for _, c := range data.Couples {
		d.Couples = append(d.Couples, []string{c[0], c[1]})
	}
	return d
}
