// Package config reads and writes the user configuration file
// ($XDG_CONFIG_HOME/panelsplit/config.yaml) and resolves it against
// environment variable fallbacks.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alnah/go-panelsplit/internal/textstat"
)

// Config keys.
const (
	KeyProvider   = "provider"
	KeyModel      = "model"
	KeyOutputDir  = "output-dir"
	KeyCache      = "cache"
	KeyLogLevel   = "log-level"
	KeyMaxRetries = "max-retries"

	KeyMinWords              = "policy.min-words"
	KeyMaxWords              = "policy.max-words"
	KeyBlockSplitMaxWords    = "policy.block-split-max-words"
	KeyMaxParagraphsPerGroup = "policy.max-paragraphs-per-group"
	KeyMaxSentencesPerPanel  = "policy.max-sentences-per-panel"
	KeyEngageSoftLimit       = "policy.engage-soft-limit"
	KeyEngageHardLimit       = "policy.engage-hard-limit"
)

// Environment variable fallbacks.
const (
	EnvProvider  = "PANELSPLIT_PROVIDER"
	EnvModel     = "PANELSPLIT_MODEL"
	EnvOutputDir = "PANELSPLIT_OUTPUT_DIR"
	EnvCache     = "PANELSPLIT_CACHE"
	EnvLogLevel  = "PANELSPLIT_LOG_LEVEL"
)

// DefaultMaxRetries is used when max-retries is not configured.
const DefaultMaxRetries = 3

const fileName = "config.yaml"

// Sentinel errors.
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
	ErrNotDirectory = errors.New("path is not a directory")
	ErrNotWritable  = errors.New("directory is not writable")
)

// File is the on-disk layout of config.yaml.
type File struct {
	Provider   string          `yaml:"provider,omitempty"`
	Model      string          `yaml:"model,omitempty"`
	OutputDir  string          `yaml:"output-dir,omitempty"`
	Cache      string          `yaml:"cache,omitempty"`
	LogLevel   string          `yaml:"log-level,omitempty"`
	MaxRetries int             `yaml:"max-retries,omitempty"`
	Policy     textstat.Policy `yaml:"policy,omitempty"`
}

// Config is the resolved configuration.
type Config struct {
	Provider   string
	Model      string
	OutputDir  string
	Cache      string
	LogLevel   string
	MaxRetries int
	Policy     textstat.Policy
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/panelsplit.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "panelsplit"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "panelsplit"), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, fileName), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks, then
// defaults. A missing file is not an error. The policy is validated.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}

	f, err := readFile(p)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Config{
		Provider:   orEnv(f.Provider, EnvProvider),
		Model:      orEnv(f.Model, EnvModel),
		OutputDir:  orEnv(f.OutputDir, EnvOutputDir),
		Cache:      orEnv(f.Cache, EnvCache),
		LogLevel:   orEnv(f.LogLevel, EnvLogLevel),
		MaxRetries: f.MaxRetries,
		Policy:     f.Policy.OrDefault(),
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if err := cfg.Policy.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", p, err)
	}
	return cfg, nil
}

func orEnv(v, env string) string {
	if v != "" {
		return v
	}
	return os.Getenv(env)
}

// readFile decodes a config.yaml. Unknown keys are rejected.
func readFile(p string) (File, error) {
	data, err := os.ReadFile(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return File{}, err
	}
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("invalid config syntax: %w", err)
	}
	return f, nil
}

// Save sets a single key in the config file.
// Creates the config directory and file if they don't exist.
// Other keys are preserved; comments are not.
func Save(key, value string) error {
	p, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	f, err := readFile(p)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := set(&f, key, value); err != nil {
		return err
	}
	if err := f.Policy.OrDefault().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	// #nosec G306 -- config file with standard permissions
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}

// Get reads a single value from the config file.
// Returns an empty string if the key is not set.
func Get(key string) (string, error) {
	all, err := List()
	if err != nil {
		return "", err
	}
	if !validKey(key) {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return all[key], nil
}

// List returns every key set in the config file.
func List() (map[string]string, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	f, err := readFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	out := map[string]string{}
	for k, v := range fields(&f) {
		if s := v.get(); s != "" && s != "0" {
			out[k] = s
		}
	}
	return out, nil
}

// Keys returns every settable key, sorted.
func Keys() []string {
	var f File
	out := make([]string, 0, 16)
	for k := range fields(&f) {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func validKey(key string) bool {
	var f File
	_, ok := fields(&f)[key]
	return ok
}

func set(f *File, key, value string) error {
	field, ok := fields(f)[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return field.set(strings.TrimSpace(value))
}

// field binds a config key to a File field.
type field struct {
	get func() string
	set func(string) error
}

func fields(f *File) map[string]field {
	return map[string]field{
		KeyProvider:              stringField(&f.Provider),
		KeyModel:                 stringField(&f.Model),
		KeyOutputDir:             stringField(&f.OutputDir),
		KeyCache:                 stringField(&f.Cache),
		KeyLogLevel:              stringField(&f.LogLevel),
		KeyMaxRetries:            intField(KeyMaxRetries, &f.MaxRetries),
		KeyMinWords:              intField(KeyMinWords, &f.Policy.MinWords),
		KeyMaxWords:              intField(KeyMaxWords, &f.Policy.MaxWords),
		KeyBlockSplitMaxWords:    intField(KeyBlockSplitMaxWords, &f.Policy.BlockSplitMaxWords),
		KeyMaxParagraphsPerGroup: intField(KeyMaxParagraphsPerGroup, &f.Policy.MaxParagraphsPerGroup),
		KeyMaxSentencesPerPanel:  intField(KeyMaxSentencesPerPanel, &f.Policy.MaxSentencesPerPanel),
		KeyEngageSoftLimit:       intField(KeyEngageSoftLimit, &f.Policy.EngageSoftLimit),
		KeyEngageHardLimit:       intField(KeyEngageHardLimit, &f.Policy.EngageHardLimit),
	}
}

func stringField(p *string) field {
	return field{
		get: func() string { return *p },
		set: func(v string) error {
			*p = v
			return nil
		},
	}
}

func intField(key string, p *int) field {
	return field{
		get: func() string { return strconv.Itoa(*p) },
		set: func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrInvalidValue, key, v)
			}
			*p = n
			return nil
		},
	}
}

// ResolveOutputPath resolves the final output path using the following precedence:
//  1. If output is absolute, use it as-is
//  2. If output is relative and outputDir is set, join them
//  3. If output is empty, use defaultName in outputDir (or cwd if no outputDir)
//
// All paths are cleaned using filepath.Clean.
func ResolveOutputPath(output, outputDir, defaultName string) string {
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}

	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}

	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// EnsureOutputDir checks that d is a writable directory, creating it if
// needed. A leading ~ is expanded.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("output-dir cannot be empty")
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, d)
	}

	testFile := filepath.Join(d, ".panelsplit-write-test")
	f, err := os.Create(testFile) // #nosec G304 -- path is constructed from validated dir
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotWritable, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(testFile)
		return fmt.Errorf("%w: %w", ErrNotWritable, err)
	}
	_ = os.Remove(testFile)
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
