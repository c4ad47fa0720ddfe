package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/vango-dev/headkit/internal/errors"
	"github.com/vango-dev/headkit/pkg/head"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if !cfg.PrimeIcons {
		t.Error("PrimeIcons should default to true")
	}
	if !cfg.Cookies.Secure {
		t.Error("Cookies.Secure should default to true")
	}
	if cfg.Cookies.SameSite != "Strict" {
		t.Errorf("Cookies.SameSite = %q, want %q", cfg.Cookies.SameSite, "Strict")
	}
	if cfg.ProjectStage != "Production" {
		t.Errorf("ProjectStage = %q, want %q", cfg.ProjectStage, "Production")
	}
	if cfg.Resources.Prefix != DefaultResourcePrefix {
		t.Errorf("Resources.Prefix = %q, want %q", cfg.Resources.Prefix, DefaultResourcePrefix)
	}
	if cfg.Locales.Default != DefaultLocale {
		t.Errorf("Locales.Default = %q, want %q", cfg.Locales.Default, DefaultLocale)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if errors.Code(err) != "H011" {
		t.Errorf("Load(empty dir) error = %v, want H011", err)
	}

	writeFile(t, filepath.Join(tmpDir, ConfigFileName), `{
  "theme": "arya",
  "primeIcons": false,
  "projectStage": "Development",
  "validation": {"client": true, "bean": true},
  "locales": {"client": true, "supported": ["de", "pt-BR"]},
  "cookies": {"secure": false, "sameSite": ""},
  "client": {"partialSubmit": true, "moveScriptsToBottom": true},
  "resources": {"prefix": "/static", "dir": "res"},
  "server": {"port": 9090, "contextPath": "/shop/"}
}
`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Theme != "arya" {
		t.Errorf("Theme = %q, want %q", cfg.Theme, "arya")
	}
	if cfg.PrimeIcons {
		t.Error("PrimeIcons should be false")
	}
	if cfg.Cookies.Secure || cfg.Cookies.SameSite != "" {
		t.Errorf("Cookies = %+v, want secure false and no sameSite", cfg.Cookies)
	}
	if cfg.Resources.Prefix != "/static/" {
		t.Errorf("Resources.Prefix = %q, want %q", cfg.Resources.Prefix, "/static/")
	}
	if cfg.Server.ContextPath != "/shop" {
		t.Errorf("Server.ContextPath = %q, want %q", cfg.Server.ContextPath, "/shop")
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Locales.Default != DefaultLocale {
		t.Errorf("Locales.Default = %q, want %q", cfg.Locales.Default, DefaultLocale)
	}
	if got := cfg.ResourcesDir(); got != filepath.Join(tmpDir, "res") {
		t.Errorf("ResourcesDir = %q, want %q", got, filepath.Join(tmpDir, "res"))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate error: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "headkit.yaml"), `
theme: "#{cookie.theme ?? 'vela'}"
projectStage: SystemTest
locales:
  client: true
  default: fr
cookies:
  sameSite: Lax
resources:
  manifest: s3://assets/manifest.json
  region: eu-west-1
`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Theme != "#{cookie.theme ?? 'vela'}" {
		t.Errorf("Theme = %q", cfg.Theme)
	}
	if !cfg.PrimeIcons || !cfg.Cookies.Secure {
		t.Error("defaults not kept for keys absent from YAML")
	}
	if cfg.Cookies.SameSite != "Lax" {
		t.Errorf("Cookies.SameSite = %q, want Lax", cfg.Cookies.SameSite)
	}
	if cfg.ManifestPath() != "" {
		t.Errorf("ManifestPath = %q, want empty for S3", cfg.ManifestPath())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate error: %v", err)
	}
	if hc := cfg.HeadConfig(); hc.ProjectStage != head.StageSystemTest {
		t.Errorf("ProjectStage = %q, want SystemTest", hc.ProjectStage)
	}
}

func TestLoadPrefersJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "headkit.yml"), "theme: vela\n")
	writeFile(t, filepath.Join(tmpDir, ConfigFileName), `{"theme": "arya"}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "arya" {
		t.Errorf("Theme = %q, want arya from headkit.json", cfg.Theme)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path = %q", cfg.Path())
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{ConfigFileName, "not valid json"},
		{"headkit.yaml", "theme: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name)
			writeFile(t, path, tt.content)

			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("Expected error for invalid file")
			}
			if !strings.Contains(err.Error(), "H010") {
				t.Errorf("Expected H010 error, got: %v", err)
			}
		})
	}
}

func TestLoadFile_SyntaxLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, "{\n  \"name\": \"demo\",\n  \"theme\": saga\n}")

	_, err := LoadFile(path)
	he, ok := err.(*errors.HeadError)
	if !ok {
		t.Fatalf("LoadFile() error = %v, want *HeadError", err)
	}
	if he.Location == nil || he.Location.Line != 3 {
		t.Errorf("Location = %v, want line 3", he.Location)
	}
	if he.Location != nil && he.Location.File != path {
		t.Errorf("Location.File = %q, want %q", he.Location.File, path)
	}
}

func TestValidate_StageExample(t *testing.T) {
	cfg := New()
	cfg.ProjectStage = "Staging"

	err := cfg.Validate()
	he, ok := err.(*errors.HeadError)
	if !ok {
		t.Fatalf("Validate() error = %v, want *HeadError", err)
	}
	if !strings.Contains(he.Example, "Development") {
		t.Errorf("Example = %q, want a projectStage example", he.Example)
	}
}

func TestSave(t *testing.T) {
	for _, name := range []string{ConfigFileName, "headkit.yaml"} {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), name)

			cfg := New()
			cfg.Theme = "vela"
			cfg.PrimeIcons = false

			// Save should fail without configPath set
			if err := cfg.Save(); err == nil {
				t.Error("Expected error when saving without path")
			}

			if err := cfg.SaveTo(configPath); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}

			loaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if loaded.Theme != "vela" {
				t.Errorf("Theme = %q, want %q", loaded.Theme, "vela")
			}
			if loaded.PrimeIcons {
				t.Error("PrimeIcons = true after saving false")
			}

			loaded.Server.Port = 9001
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			reloaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if reloaded.Server.Port != 9001 {
				t.Errorf("Server.Port = %d, want %d", reloaded.Server.Port, 9001)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown stage", func(c *Config) { c.ProjectStage = "Staging" }, "project stage"},
		{"unknown same site", func(c *Config) { c.Cookies.SameSite = "strict" }, "sameSite"},
		{"bean without client", func(c *Config) { c.Validation.Bean = true }, "validation.bean"},
		{"bad locale", func(c *Config) { c.Locales.Supported = []string{"not a tag"} }, ""},
		{"watch without manifest", func(c *Config) { c.Resources.Watch = true }, "resources.watch"},
		{"watch s3 manifest", func(c *Config) {
			c.Resources.Watch = true
			c.Resources.Manifest = "s3://bucket/m.json"
		}, "resources.watch"},
		{"bad s3 url", func(c *Config) { c.Resources.Manifest = "s3://bucket" }, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port"},
		{"relative context path", func(c *Config) { c.Server.ContextPath = "shop" }, "contextPath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.name == "defaults" {
				if err != nil {
					t.Errorf("Validate should pass for defaults: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if errors.Code(err) != "H010" {
				t.Errorf("Code = %q, want H010", errors.Code(err))
			}
			if tt.want != "" && !strings.Contains(err.(*errors.HeadError).Detail, tt.want) {
				t.Errorf("Detail = %q, want it to mention %q", err.(*errors.HeadError).Detail, tt.want)
			}
		})
	}
}

func TestHeadConfig(t *testing.T) {
	cfg := New()
	cfg.Theme = "none"
	cfg.ProjectStage = "Development"
	cfg.Validation = ValidationConfig{Client: true, Bean: true, EmptyFields: true, EmptyStringAsNull: true}
	cfg.Locales.Client = true
	cfg.Client = ClientConfig{EarlyPostParamEvaluation: true, PartialSubmit: true, MoveScriptsToBottom: true}

	got := cfg.HeadConfig()
	want := head.Config{
		Theme:                      "none",
		PrimeIcons:                 true,
		ClientSideValidation:       true,
		BeanValidation:             true,
		ClientSideLocalization:     true,
		CookiesSecure:              true,
		CookiesSameSite:            "Strict",
		ValidateEmptyFields:        true,
		InterpretEmptyStringAsNull: true,
		EarlyPostParamEvaluation:   true,
		PartialSubmit:              true,
		MoveScriptsToBottom:        true,
		ProjectStage:               head.StageDevelopment,
	}
	if got != want {
		t.Errorf("HeadConfig() = %+v, want %+v", got, want)
	}

	cfg.ProjectStage = "bogus"
	if got := cfg.HeadConfig().ProjectStage; got != head.StageProduction {
		t.Errorf("ProjectStage for unknown stage = %q, want Production", got)
	}
}

func TestSupportedLocales(t *testing.T) {
	cfg := New()
	cfg.Locales.Default = "de"
	cfg.Locales.Supported = []string{"en", "de", "pt-BR"}

	tags, err := cfg.SupportedLocales()
	if err != nil {
		t.Fatal(err)
	}
	want := []language.Tag{language.MustParse("de"), language.MustParse("en"), language.MustParse("pt-BR")}
	if len(tags) != len(want) {
		t.Fatalf("SupportedLocales() = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tag[%d] = %v, want %v", i, tags[i], want[i])
		}
	}

	p, err := cfg.LocaleProvider()
	if err != nil {
		t.Fatal(err)
	}
	tag, err := p.Locale(nil)
	if err != nil || tag != want[0] {
		t.Errorf("Locale(nil) = (%v, %v), want de", tag, err)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := New()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8443
	if got := cfg.ServerAddress(); got != "0.0.0.0:8443" {
		t.Errorf("ServerAddress = %q, want %q", got, "0.0.0.0:8443")
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "headkit.yml"), "theme: saga\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if got != root {
		t.Errorf("FindProjectRoot = %q, want %q", got, root)
	}
	if !Exists(root) || Exists(nested) {
		t.Error("Exists reports wrong directories")
	}
}
