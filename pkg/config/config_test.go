package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Extra string `yaml:"extra"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "psg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadKeepsDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("PSG_TEST_NAME", "from-env")
	path := writeConfig(t, "name: ${PSG_TEST_NAME}\n")

	s := sample{Port: 8080, Extra: "kept"}
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" || s.Port != 8080 || s.Extra != "kept" {
		t.Errorf("got %+v", s)
	}
}

func TestLoadValidates(t *testing.T) {
	path := writeConfig(t, "port: 0\n")
	s := sample{Port: 1}
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "port: [unterminated\n")
	s := sample{Port: 1}
	if err := Load(path, &s); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	s := sample{Port: 8080}
	if err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Port != 8080 {
		t.Errorf("defaults changed: %+v", s)
	}

	bad := sample{}
	if err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &bad); err == nil {
		t.Error("defaults should still be validated")
	}
}

func TestLoadOptionalExistingFile(t *testing.T) {
	path := writeConfig(t, "port: 9000\n")
	s := sample{Port: 8080}
	if err := LoadOptional(path, &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Port != 9000 {
		t.Errorf("port = %d, want 9000", s.Port)
	}
}
