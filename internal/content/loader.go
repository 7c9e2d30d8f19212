package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

// Format is the physical encoding of a library file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported library file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// document is the on-disk shape of a library: {"items": [...]}. A bare list is also accepted.
type document struct {
	Items []models.ContentRow `json:"items" yaml:"items"`
}

// LoadFile reads, decodes and validates a library file.
func LoadFile(path string, opts ...Option) (*Library, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		slog.Error("content.LoadFile: open failed", "path", path, "error", err)
		return nil, fmt.Errorf("failed to open content library: %w", err)
	}
	defer f.Close()

	slog.Debug("content.LoadFile: decoding library", "path", path, "format", format)
	return Decode(f, format, append([]Option{WithSource(path)}, opts...)...)
}

// Decode reads a library in the given format and validates it.
// Decoding problems are reported as a *LoadError, like validation problems.
func Decode(r io.Reader, format Format, opts ...Option) (*Library, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content library: %w", err)
	}

	var rows []models.ContentRow
	switch format {
	case FormatJSON:
		rows, err = decodeJSON(data)
	case FormatYAML:
		rows, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported library format %q", format)
	}
	if err != nil {
		return nil, &LoadError{Source: cfg.Source, Issues: []Issue{{Index: -1, Problem: err.Error()}}}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Source: cfg.Source, Issues: []Issue{{Index: -1, Problem: "library contains no rows"}}}
	}
	return New(rows, opts...)
}

func decodeJSON(data []byte) ([]models.ContentRow, error) {
	trimmed := bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	var rows []models.ContentRow
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	} else {
		var doc document
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		rows = doc.Items
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json: unexpected data after the library document")
	}
	return rows, nil
}

func decodeYAML(data []byte) ([]models.ContentRow, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var rows []models.ContentRow
	if root.Content[0].Kind == yaml.SequenceNode {
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	} else {
		var doc document
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		rows = doc.Items
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: a library file holds a single document")
	}
	return rows, nil
}
