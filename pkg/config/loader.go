package config

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/fetchpush/fetchpush/pkg/expand"
)

// 📚 Config is a parsed mapping file.
type Config struct {
	// Mapping holds the URL→destination entries in file order.
	Mapping *Mapping
	// Ignore holds glob patterns for destinations to skip. Only the
	// structured formats can declare these.
	Ignore []string
}

// 🔧 Options configures loading.
type Options struct {
	// Registry expands {placeholder} tokens in source URLs. Required.
	Registry *expand.Registry
	// OnWarning receives human-readable parse warnings, such as malformed
	// lines. Optional.
	OnWarning func(format string, args ...interface{})
}

// Load parses a mapping file from the given path.
// The format is determined by the file extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
// - anything else is the line-oriented text format
func Load(ctx context.Context, path string, opts Options) (*Config, error) {
	if opts.Registry == nil {
		return nil, errors.Errorf("placeholder registry is required")
	}
	if opts.OnWarning == nil {
		opts.OnWarning = func(string, ...interface{}) {}
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading mapping file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading mapping file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(ctx, data, opts)
	case ".yaml", ".yml":
		return loadYAML(ctx, data, opts)
	case ".hcl":
		return loadHCL(ctx, data, path, opts)
	default:
		return loadText(ctx, data, opts)
	}
}

// loadText parses the line-oriented format: one "<url> <destination>" pair
// per line, blank lines and # comments skipped. A line with any other field
// count is reported through OnWarning and produces no entry; parsing always
// continues.
func loadText(ctx context.Context, data []byte, opts Options) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	cfg := &Config{Mapping: NewMapping()}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	// Lines have no length limit; the default token cap is only 64KiB.
	scanner.Buffer(nil, len(data)+1)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			opts.OnWarning("Invalid format at line %d: %s", lineNum, line)
			logger.Warn().Int("line", lineNum).Str("content", line).Msg("invalid mapping line")
			continue
		}

		url := opts.Registry.Expand(ctx, fields[0])
		cfg.Mapping.Set(url, fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("scanning mapping file: %w", err)
	}

	return cfg, nil
}

// jsonDocument mirrors the JSON mapping format:
//
//	{
//	  "entries": [
//	    {"url": "https://example.com/report-{one_week_ago}.csv", "path": "data/report.csv"}
//	  ],
//	  "ignore": ["*.tmp"]
//	}
type jsonDocument struct {
	Entries []jsonEntry `json:"entries"`
	Ignore  []string    `json:"ignore,omitempty"`
}

type jsonEntry struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// loadJSON parses the JSON mapping format, rejecting unknown fields.
func loadJSON(ctx context.Context, data []byte, opts Options) (*Config, error) {
	var doc jsonDocument
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}

	cfg := &Config{Mapping: NewMapping(), Ignore: doc.Ignore}
	entries := make([]Entry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		entries = append(entries, Entry{Source: e.URL, Destination: e.Path})
	}
	if err := appendEntries(ctx, cfg, entries, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}

// yamlDocument mirrors the YAML mapping format:
//
//	entries:
//	  - url: https://example.com/report-{one_week_ago}.csv
//	    path: data/report.csv
//	ignore:
//	  - "*.tmp"
type yamlDocument struct {
	Entries []yamlEntry `yaml:"entries"`
	Ignore  []string    `yaml:"ignore,omitempty"`
}

type yamlEntry struct {
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
}

// loadYAML parses the YAML mapping format with strict field checking.
func loadYAML(ctx context.Context, data []byte, opts Options) (*Config, error) {
	var doc yamlDocument
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	cfg := &Config{Mapping: NewMapping(), Ignore: doc.Ignore}
	entries := make([]Entry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		entries = append(entries, Entry{Source: e.URL, Destination: e.Path})
	}
	if err := appendEntries(ctx, cfg, entries, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}

// hclDocument mirrors the HCL mapping format:
//
//	entry {
//	  url  = "https://example.com/report-{one_week_ago}.csv"
//	  path = "data/report.csv"
//	}
//	ignore = ["*.tmp"]
type hclDocument struct {
	Entries []hclEntry `hcl:"entry,block"`
	Ignore  []string   `hcl:"ignore,optional"`
}

type hclEntry struct {
	URL  string `hcl:"url"`
	Path string `hcl:"path"`
}

// loadHCL parses the HCL mapping format.
func loadHCL(ctx context.Context, data []byte, filename string, opts Options) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// No variables are exposed; URLs use {placeholder} tokens instead.
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var doc hclDocument
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &doc)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{Mapping: NewMapping(), Ignore: doc.Ignore}
	entries := make([]Entry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		entries = append(entries, Entry{Source: e.URL, Destination: e.Path})
	}
	if err := appendEntries(ctx, cfg, entries, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}

// appendEntries validates structured-format entries and inserts them with
// expanded URLs. Unlike text lines, an incomplete structured entry is fatal.
func appendEntries(ctx context.Context, cfg *Config, entries []Entry, opts Options) error {
	for i, e := range entries {
		if e.Source == "" {
			return errors.Errorf("entry %d: url is required", i)
		}
		if e.Destination == "" {
			return errors.Errorf("entry %d: path is required", i)
		}
		cfg.Mapping.Set(opts.Registry.Expand(ctx, e.Source), e.Destination)
	}
	return nil
}
