package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"stacklang/internal/stacklang/ierr"
)

// Settings is the pipeline's configuration surface: which optional
// passes run, whether the CLI prints the final optimized program (only
// the program after the last pass is printed; intermediate programs are
// not dumped), and the
// grammar's error-recovery token (which, when present, disables the
// differential tester rather than feeding it meaningless sentences).
type Settings struct {
	CommutePushes bool   `yaml:"commute_pushes"`
	StacklangDump bool   `yaml:"stacklang_dump"`
	Trace         bool   `yaml:"trace"`
	ErrorToken    string `yaml:"error_token"`
}

// DefaultSettings matches the core's conservative defaults: every
// optional pass runs, nothing is dumped, no error-recovery token.
func DefaultSettings() Settings {
	return Settings{CommutePushes: true}
}

// LoadSettings reads an optional YAML settings file, falling back to
// DefaultSettings for any field the file doesn't mention (zero-value
// overlay, plain os.Args-driven configuration — no precedence framework,
// just "file present overrides its own keys").
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, ierr.Wrap(err, ierr.CodeConfig, "reading settings file "+path)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, ierr.Wrap(err, ierr.CodeConfig, "parsing settings file "+path)
	}
	return settings, nil
}
