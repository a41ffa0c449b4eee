package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"stormscrape/internal/extractor"
	"stormscrape/internal/llm"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

// DefaultPath is read from the working directory when --config is not given.
const DefaultPath = "stormscrape.json5"

// File is the on-disk configuration. Every field is optional; command-line
// flags that were set explicitly take precedence.
type File struct {
	URL        string            `json:"url"`
	Output     string            `json:"output"`
	Selector   string            `json:"selector"`
	Columns    extractor.Columns `json:"columns"`
	Backend    string            `json:"backend"`
	UserAgent  string            `json:"user_agent"`
	Proxy      string            `json:"proxy"`
	Question   string            `json:"question"`
	DataFormat string            `json:"data_format"`
	LLM        llm.Settings      `json:"llm"`
}

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// Read loads name and merges <name>.local.<ext> over it when present. It
// returns os.ErrNotExist only when neither file exists.
func Read[T any](name string) (T, error) {
	var out T
	allNotFound := true

	prefix, ext := splitExt(filepath.Base(name))
	localPath := filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local.%s", prefix, ext))

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		if err := json5.Unmarshal(defaultFile, &out); err != nil {
			return out, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		allNotFound = false
	}

	localFile, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override T
		if err := json5.Unmarshal(localFile, &override); err != nil {
			return out, fmt.Errorf("failed to parse %s: %w", localPath, err)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		slog.Debug("merging config with local overrides", "local", localPath)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}
	return out, nil
}

// Load reads the config file at path. A missing file yields the zero File.
func Load(path string) (File, error) {
	f, err := Read[File](path)
	if errors.Is(err, os.ErrNotExist) {
		return File{}, nil
	}
	return f, err
}

// Env holds variables read from .env files. Lookups fall back to the process
// environment; nothing is written to it.
type Env map[string]string

// LoadDotEnv reads variables from .env files. Earlier files win on duplicate
// keys. Missing files are ignored.
func LoadDotEnv(files ...string) Env {
	env := Env{}
	for _, f := range files {
		vars, err := godotenv.Read(f)
		if err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("failed to load env file", "file", f, "err", err)
			}
			continue
		}
		for k, v := range vars {
			if _, ok := env[k]; !ok {
				env[k] = v
			}
		}
	}
	return env
}

// Getenv returns the .env value for key, or the process environment's.
func (e Env) Getenv(key string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return os.Getenv(key)
}

// ColumnsOrDefault fills columns left unset in the file from
// extractor.DefaultColumns.
func (f File) ColumnsOrDefault() (extractor.Columns, error) {
	columns := f.Columns
	if err := mergo.Merge(&columns, extractor.DefaultColumns); err != nil {
		return extractor.Columns{}, err
	}
	return columns, nil
}

// CredentialEnv names the environment variable holding the provider's key.
func CredentialEnv(provider string) string {
	switch provider {
	case "replicate":
		return "REPLICATE_API_TOKEN"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// ResolveAPIKey returns the configured key or, failing that, the provider's
// environment variable as reported by getenv.
func ResolveAPIKey(s llm.Settings, getenv func(string) string) string {
	if s.APIKey != "" {
		return s.APIKey
	}
	if env := CredentialEnv(s.Provider); env != "" {
		return getenv(env)
	}
	return ""
}
