package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rationsim/rationsim/sim"
)

// File loads prepared inputs from a YAML (.yaml, .yml) or JSON (.json) file.
// Decoding is strict: unknown keys are rejected. Shape checks against the
// horizon happen in the simulator.
type File struct {
	Path string
}

// Provide reads and decodes the file.
func (f File) Provide() (*sim.Inputs, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &sim.DataProviderError{Reason: "reading input file", Err: err}
	}
	in, err := decodeInputs(data, filepath.Ext(f.Path))
	if err != nil {
		return nil, &sim.DataProviderError{Reason: fmt.Sprintf("decoding %s", f.Path), Err: err}
	}
	return in, nil
}

func decodeInputs(data []byte, ext string) (*sim.Inputs, error) {
	var in sim.Inputs
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&in); err != nil {
			return nil, err
		}
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&in); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .yaml, .yml or .json)", ext)
	}
	return &in, nil
}

// WriteFile stores inputs so that File can load them back. The format follows
// the extension of path.
func WriteFile(path string, in *sim.Inputs) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(in)
	case ".json":
		data, err = json.MarshalIndent(in, "", "  ")
	default:
		return fmt.Errorf("unsupported input format %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
