// Package config loads incimine settings from CUE, TOML, or YAML files and
// from INCIMINE_* environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, a .env
// file, the process environment. Command-line flags are applied on top by
// the CLI.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/incimine/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// DefaultDatabase is the SQLite file used when none is configured.
const DefaultDatabase = "incidents.db"

// DefaultPrefix names saved result files.
const DefaultPrefix = "apriori_results"

// Environment variables read by ApplyEnv.
const (
	EnvDatabase      = "INCIMINE_DB"
	EnvMinSupport    = "INCIMINE_MIN_SUPPORT"
	EnvMinConfidence = "INCIMINE_MIN_CONFIDENCE"
	EnvMinLift       = "INCIMINE_MIN_LIFT"
	EnvTopN          = "INCIMINE_TOP_N"
	EnvOutputDir     = "INCIMINE_OUTPUT_DIR"
)

// Config is the complete runtime configuration.
type Config struct {
	Database   string           `json:"database" yaml:"database" toml:"database"`
	Thresholds model.Thresholds `json:"thresholds" yaml:"thresholds" toml:"thresholds"`
	Mining     MiningConfig     `json:"mining" yaml:"mining" toml:"mining"`
	Output     OutputConfig     `json:"output" yaml:"output" toml:"output"`
}

// MiningConfig tunes the miner without changing its results.
type MiningConfig struct {
	Workers int `json:"workers" yaml:"workers" toml:"workers"` // 0 means one per CPU
	MaxLen  int `json:"max_len" yaml:"max_len" toml:"max_len"` // 0 means unbounded
}

// OutputConfig controls where saved results go.
type OutputConfig struct {
	Dir    string `json:"dir" yaml:"dir" toml:"dir"`
	Prefix string `json:"prefix" yaml:"prefix" toml:"prefix"`
	Save   bool   `json:"save" yaml:"save" toml:"save"`
}

// LoadError reports a config file problem, with a source position when
// the format provides one.
type LoadError struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database:   DefaultDatabase,
		Thresholds: model.DefaultThresholds(),
		Output: OutputConfig{
			Dir:    ".",
			Prefix: DefaultPrefix,
		},
	}
}

// Load reads path over the defaults and validates the result. The format
// is chosen by extension: .cue, .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		err = decodeCUE(path, data, cfg)
	case ".toml":
		err = decodeTOML(path, data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(path, data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .cue, .toml, .yaml)", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeCUE unifies the file with the embedded #Config schema, so type and
// range violations are reported with CUE positions, then copies the
// concrete result over cfg.
func decodeCUE(path string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cueError(path, err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cueError(path, err)
	}

	// Round-trip through JSON so fields the file leaves out keep their defaults.
	raw, err := unified.MarshalJSON()
	if err != nil {
		return cueError(path, err)
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return &LoadError{Path: path, Message: err.Error()}
	}
	return nil
}

func decodeTOML(path string, data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return &LoadError{Path: path, Message: err.Error()}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return &LoadError{Path: path, Message: "unknown keys: " + strings.Join(keys, ", ")}
	}
	return nil
}

func decodeYAML(path string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty document leaves the defaults in place.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &LoadError{Path: path, Message: err.Error()}
	}
	return nil
}

// cueError keeps the first CUE error, positioned in the user's file rather
// than the embedded schema when CUE reports both.
func cueError(path string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Path: path, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Path: path, Message: first.Error()}
	for _, pos := range cueerrors.Positions(first) {
		if pos.Filename() == path {
			le.Pos = pos
			break
		}
	}
	return le
}

// ApplyEnv loads envFiles (".env" when none are given) into the process
// environment, skipping files that do not exist, then applies INCIMINE_*
// overrides. Variables already set in the environment win over the files.
func (c *Config) ApplyEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	if v, ok := os.LookupEnv(EnvDatabase); ok && v != "" {
		c.Database = v
	}
	if v, ok := os.LookupEnv(EnvOutputDir); ok && v != "" {
		c.Output.Dir = v
	}
	if err := envFloat(EnvMinSupport, &c.Thresholds.MinSupport); err != nil {
		return err
	}
	if err := envFloat(EnvMinConfidence, &c.Thresholds.MinConfidence); err != nil {
		return err
	}
	if err := envFloat(EnvMinLift, &c.Thresholds.MinLift); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvTopN); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &model.ConfigError{Field: EnvTopN, Value: v, Reason: "not an integer"}
		}
		c.Thresholds.TopN = n
	}
	return nil
}

func envFloat(name string, dst *float64) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return &model.ConfigError{Field: name, Value: v, Reason: "not a number"}
	}
	*dst = f
	return nil
}

// Validate checks thresholds and mining options.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Mining.Workers < 0 {
		return &model.ConfigError{Field: "mining.workers", Value: c.Mining.Workers, Reason: "must be >= 0"}
	}
	if c.Mining.MaxLen < 0 {
		return &model.ConfigError{Field: "mining.max_len", Value: c.Mining.MaxLen, Reason: "must be >= 0"}
	}
	if c.Database == "" {
		return &model.ConfigError{Field: "database", Value: c.Database, Reason: "must not be empty"}
	}
	return nil
}
