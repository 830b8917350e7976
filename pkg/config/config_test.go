package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "flowcheck.yaml")

	content := `
properties:
  user.to.proxy: azkaban
  retries: "3"
propertiesFile: base.properties
parallel: false
maxXms: 512M
maxXmx: 4G
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Properties["user.to.proxy"] != "azkaban" || cfg.Properties["retries"] != "3" {
		t.Errorf("unexpected properties: %v", cfg.Properties)
	}
	if cfg.PropertiesFile != "base.properties" {
		t.Errorf("expected propertiesFile base.properties, got %s", cfg.PropertiesFile)
	}
	if cfg.Parallel {
		t.Error("expected parallel false")
	}
	if cfg.MaxXms != "512M" || cfg.MaxXmx != "4G" {
		t.Errorf("unexpected limits: %s %s", cfg.MaxXms, cfg.MaxXmx)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/flowcheck.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "flowcheck.yaml")

	content := `properties: [invalid yaml`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_EmptyConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "flowcheck.yaml")

	if err := os.WriteFile(configPath, []byte(``), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Parallel {
		t.Error("expected parallel to default to true")
	}
	if cfg.MaxXms != "1G" || cfg.MaxXmx != "2G" {
		t.Errorf("expected default limits 1G/2G, got %s/%s", cfg.MaxXms, cfg.MaxXmx)
	}
}

func TestLoadFromDir_FlowcheckYml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "flowcheck.yml"), []byte(`maxXmx: 8G`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxXmx != "8G" {
		t.Errorf("expected maxXmx 8G, got %s", cfg.MaxXmx)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	ResetHome()
	defer ResetHome()
	t.Setenv("FLOWCHECK_HOME", t.TempDir())

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should return defaults
	if len(cfg.Properties) != 0 {
		t.Errorf("expected no properties, got %v", cfg.Properties)
	}
	if cfg.MaxXmx != "2G" {
		t.Errorf("expected default maxXmx, got %s", cfg.MaxXmx)
	}
}

func TestLoadFromDir_PrefersYamlOverYml(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "flowcheck.yaml"), []byte(`maxXmx: 3G`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "flowcheck.yml"), []byte(`maxXmx: 5G`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should prefer flowcheck.yaml
	if cfg.MaxXmx != "3G" {
		t.Errorf("expected maxXmx 3G (from flowcheck.yaml), got %s", cfg.MaxXmx)
	}
}

func TestLoadFromDir_HomeFallback(t *testing.T) {
	home := t.TempDir()
	ResetHome()
	defer ResetHome()
	t.Setenv("FLOWCHECK_HOME", home)

	if err := os.WriteFile(filepath.Join(home, "base.properties"), []byte("owner=ops\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, "flowcheck.yml"), []byte("maxXmx: 6G\npropertiesFile: base.properties\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxXmx != "6G" {
		t.Errorf("expected maxXmx 6G from home config, got %s", cfg.MaxXmx)
	}

	// propertiesFile resolves against the home, not the project.
	base, err := cfg.BaseProps()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := base.GetString("owner", ""); got != "ops" {
		t.Errorf("expected owner from home properties, got %q", got)
	}
}

func TestLoadFromDir_ProjectBeatsHome(t *testing.T) {
	home := t.TempDir()
	ResetHome()
	defer ResetHome()
	t.Setenv("FLOWCHECK_HOME", home)

	if err := os.WriteFile(filepath.Join(home, "flowcheck.yaml"), []byte(`maxXmx: 6G`), 0644); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "flowcheck.yaml"), []byte(`maxXmx: 3G`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxXmx != "3G" {
		t.Errorf("expected project config to win, got %s", cfg.MaxXmx)
	}
}

func TestBaseProps(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base.properties"), []byte("owner=etl\nretries=1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "flowcheck.yaml"), []byte("propertiesFile: base.properties\nproperties:\n  retries: \"3\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.SetProperty("env", "prod")

	base, err := cfg.BaseProps()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := base.GetString("owner", ""); got != "etl" {
		t.Errorf("expected owner from properties file, got %q", got)
	}
	if got := base.GetString("retries", ""); got != "3" {
		t.Errorf("expected inline properties to win, got %q", got)
	}
	if got := base.GetString("env", ""); got != "prod" {
		t.Errorf("expected env prod, got %q", got)
	}
}

func TestBaseProps_Empty(t *testing.T) {
	base, err := Default().BaseProps()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base != nil {
		t.Errorf("expected nil base props, got %v", base)
	}
}

func TestBaseProps_MissingFile(t *testing.T) {
	cfg := Default()
	cfg.PropertiesFile = filepath.Join(t.TempDir(), "nope.properties")

	if _, err := cfg.BaseProps(); err == nil {
		t.Error("expected error for missing properties file")
	}
}
