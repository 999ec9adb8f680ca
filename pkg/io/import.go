package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
)

// Read decodes a family document in the given format from r.
//
// Read returns an INVALID_FORMAT error for malformed input or a couple that
// does not have exactly two names, and INVALID_GENDER for an unknown gender
// tag. Names are not cross-checked; pass the result to [family.New] for
// that. Read does not close r.
func Read(r io.Reader, format Format) (family.Data, error) {
	var doc document
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	default:
		return family.Data{}, kerrors.New(kerrors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	if err != nil {
		return family.Data{}, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	return doc.toData()
}

// Import reads the family document at path, choosing the decoder from the
// file extension. A missing file is reported with code FILE_NOT_FOUND.
func Import(path string) (family.Data, error) {
	if err := kerrors.ValidatePath(path); err != nil {
		return family.Data{}, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return family.Data{}, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return family.Data{}, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "family file %s", path)
	}
	if err != nil {
		return family.Data{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := Read(f, format)
	if err != nil {
		return family.Data{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}
