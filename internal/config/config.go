package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/headkit/internal/errors"
	"github.com/vango-dev/headkit/pkg/assets"
	"github.com/vango-dev/headkit/pkg/head"
	"github.com/vango-dev/headkit/pkg/locale"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "headkit.json"

	// DefaultPort is the default port of `headkit serve`.
	DefaultPort = 8080

	// DefaultHost is the default host of `headkit serve`.
	DefaultHost = "localhost"

	// DefaultResourcePrefix is the URL prefix resources are served under.
	DefaultResourcePrefix = "/resources/"

	// DefaultLocale is the locale used when nothing else matches.
	DefaultLocale = "en"
)

// configFileNames are tried in order by Load.
var configFileNames = []string{ConfigFileName, "headkit.yaml", "headkit.yml"}

// Config represents a headkit.json or headkit.yaml file.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Theme is a theme name, "none" or an expression like
	// "#{cookie.theme ?? 'saga'}". Empty selects the default theme.
	Theme string `json:"theme,omitempty" yaml:"theme,omitempty"`

	// PrimeIcons includes the icon stylesheet.
	PrimeIcons bool `json:"primeIcons" yaml:"primeIcons"`

	// ProjectStage is Development, UnitTest, SystemTest or Production.
	ProjectStage string `json:"projectStage,omitempty" yaml:"projectStage,omitempty"`

	// Validation contains client side validation settings.
	Validation ValidationConfig `json:"validation,omitempty" yaml:"validation,omitempty"`

	// Locales contains localization settings.
	Locales LocalesConfig `json:"locales,omitempty" yaml:"locales,omitempty"`

	// Cookies contains cookie settings passed to the client.
	Cookies CookiesConfig `json:"cookies,omitempty" yaml:"cookies,omitempty"`

	// Client contains client runtime behavior.
	Client ClientConfig `json:"client,omitempty" yaml:"client,omitempty"`

	// Resources contains resource resolution settings.
	Resources ResourcesConfig `json:"resources,omitempty" yaml:"resources,omitempty"`

	// Server contains `headkit serve` settings.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ValidationConfig contains client side validation settings.
type ValidationConfig struct {
	// Client enables client side validation scripts.
	Client bool `json:"client,omitempty" yaml:"client,omitempty"`

	// Bean adds the bean validation script. Requires Client.
	Bean bool `json:"bean,omitempty" yaml:"bean,omitempty"`

	// EmptyFields validates fields without a value.
	EmptyFields bool `json:"emptyFields,omitempty" yaml:"emptyFields,omitempty"`

	// EmptyStringAsNull submits empty strings as null.
	EmptyStringAsNull bool `json:"emptyStringAsNull,omitempty" yaml:"emptyStringAsNull,omitempty"`
}

// LocalesConfig contains localization settings.
type LocalesConfig struct {
	// Client includes the client side translation script.
	Client bool `json:"client,omitempty" yaml:"client,omitempty"`

	// Default is the fallback locale (default: "en").
	Default string `json:"default,omitempty" yaml:"default,omitempty"`

	// Supported lists additional locales requests may negotiate.
	Supported []string `json:"supported,omitempty" yaml:"supported,omitempty"`

	// Cookie names the cookie holding an explicit locale choice.
	Cookie string `json:"cookie,omitempty" yaml:"cookie,omitempty"`

	// Query names the query parameter holding an explicit locale choice.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`
}

// CookiesConfig contains cookie settings passed to the client.
type CookiesConfig struct {
	// Secure lets the client mark cookies Secure on secure requests.
	Secure bool `json:"secure" yaml:"secure"`

	// SameSite is Strict, Lax, None or empty to omit it.
	SameSite string `json:"sameSite" yaml:"sameSite"`
}

// ClientConfig contains client runtime behavior.
type ClientConfig struct {
	EarlyPostParamEvaluation bool `json:"earlyPostParamEvaluation,omitempty" yaml:"earlyPostParamEvaluation,omitempty"`
	PartialSubmit            bool `json:"partialSubmit,omitempty" yaml:"partialSubmit,omitempty"`

	// MoveScriptsToBottom emits initialization scripts unwrapped.
	MoveScriptsToBottom bool `json:"moveScriptsToBottom,omitempty" yaml:"moveScriptsToBottom,omitempty"`
}

// ResourcesConfig contains resource resolution settings.
type ResourcesConfig struct {
	// Prefix is the URL prefix resources are served under.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Dir is a directory laid out as <library>/<name>.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Manifest is a JSON file mapping library/name to fingerprinted paths.
	// An s3://bucket/key URL loads it from S3.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`

	// Region is the AWS region of an S3 manifest.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Watch reloads a local manifest when it changes.
	Watch bool `json:"watch,omitempty" yaml:"watch,omitempty"`
}

// ServerConfig contains `headkit serve` settings.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`

	// ContextPath is the path the application is mounted at.
	ContextPath string `json:"contextPath,omitempty" yaml:"contextPath,omitempty"`

	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers are
	// honored.
	TrustedProxies []string `json:"trustedProxies,omitempty" yaml:"trustedProxies,omitempty"`

	// ClientWindow assigns a window id to requests without one.
	ClientWindow bool `json:"clientWindow,omitempty" yaml:"clientWindow,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		PrimeIcons:   true,
		ProjectStage: string(head.StageProduction),
		Locales: LocalesConfig{
			Default: DefaultLocale,
			Cookie:  locale.DefaultCookieName,
			Query:   locale.DefaultQueryParam,
		},
		Cookies: CookiesConfig{
			Secure:   true,
			SameSite: "Strict",
		},
		Resources: ResourcesConfig{
			Prefix: DefaultResourcePrefix,
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for headkit.json, headkit.yaml and headkit.yml, in that order.
func Load(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("H011").
		WithDetail("No headkit.json or headkit.yaml found in " + dir).
		WithSuggestion("Create headkit.json or run without a config to use defaults")
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("H011").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("H010").WithFile(path).Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		he := errors.New("H010").
			WithFile(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid " + formatName(path))
		if line, col, ok := syntaxPosition(data, err); ok {
			he = he.WithLocation(path, line, col)
		}
		return nil, he
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// syntaxPosition returns the 1-based line and column of a JSON syntax error.
func syntaxPosition(data []byte, err error) (line, col int, ok bool) {
	var se *json.SyntaxError
	if !stderrors.As(err, &se) {
		return 0, 0, false
	}
	offset := int(se.Offset)
	if offset > len(data) {
		offset = len(data)
	}
	line, col = 1, 1
	for _, c := range data[:offset] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col, true
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML when the
// extension says so and JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("H010").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("H010").WithFile(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.ProjectStage == "" {
		c.ProjectStage = string(head.StageProduction)
	}
	if c.Locales.Default == "" {
		c.Locales.Default = DefaultLocale
	}
	if c.Resources.Prefix == "" {
		c.Resources.Prefix = DefaultResourcePrefix
	}
	if !strings.HasSuffix(c.Resources.Prefix, "/") {
		c.Resources.Prefix += "/"
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	c.Server.ContextPath = strings.TrimRight(c.Server.ContextPath, "/")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := head.ParseStage(c.ProjectStage); err != nil {
		return c.invalid(err.Error(), "Use Development, UnitTest, SystemTest or Production").
			WithExample(`"projectStage": "Development"`)
	}
	switch c.Cookies.SameSite {
	case "", "Strict", "Lax", "None":
	default:
		return c.invalid(fmt.Sprintf("unknown cookies.sameSite %q", c.Cookies.SameSite),
			"Use Strict, Lax, None or leave it empty")
	}
	if c.Validation.Bean && !c.Validation.Client {
		return c.invalid("validation.bean requires validation.client", "Enable validation.client")
	}
	if _, err := c.SupportedLocales(); err != nil {
		return c.invalid(err.Error(), "Use BCP 47 tags such as en, de-CH or pt-BR")
	}
	if c.Resources.Watch {
		if c.Resources.Manifest == "" || strings.HasPrefix(c.Resources.Manifest, "s3://") {
			return c.invalid("resources.watch requires a local resources.manifest", "Set resources.manifest to a file path or disable watch")
		}
	}
	if strings.HasPrefix(c.Resources.Manifest, "s3://") {
		if _, _, err := assets.ParseS3URL(c.Resources.Manifest); err != nil {
			return c.invalid(err.Error(), "Use s3://bucket/key")
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return c.invalid("port must be between 0 and 65535", "")
	}
	if cp := c.Server.ContextPath; cp != "" && !strings.HasPrefix(cp, "/") {
		return c.invalid(fmt.Sprintf("server.contextPath %q must start with /", cp), "")
	}
	return nil
}

func (c *Config) invalid(detail, suggestion string) *errors.HeadError {
	err := errors.New("H010").WithDetail(detail)
	if suggestion != "" {
		err = err.WithSuggestion(suggestion)
	}
	if c.configPath != "" {
		err = err.WithFile(c.configPath)
	}
	return err
}

// HeadConfig converts the file settings to a head.Config. Call Validate
// first; an unknown project stage falls back to Production.
func (c *Config) HeadConfig() head.Config {
	stage, err := head.ParseStage(c.ProjectStage)
	if err != nil {
		stage = head.StageProduction
	}
	return head.Config{
		Theme:                      c.Theme,
		PrimeIcons:                 c.PrimeIcons,
		ClientSideValidation:       c.Validation.Client,
		BeanValidation:             c.Validation.Bean,
		ClientSideLocalization:     c.Locales.Client,
		CookiesSecure:              c.Cookies.Secure,
		CookiesSameSite:            c.Cookies.SameSite,
		ValidateEmptyFields:        c.Validation.EmptyFields,
		InterpretEmptyStringAsNull: c.Validation.EmptyStringAsNull,
		EarlyPostParamEvaluation:   c.Client.EarlyPostParamEvaluation,
		PartialSubmit:              c.Client.PartialSubmit,
		MoveScriptsToBottom:        c.Client.MoveScriptsToBottom,
		ProjectStage:               stage,
	}
}

// SupportedLocales returns the default locale followed by the supported
// ones, without duplicates.
func (c *Config) SupportedLocales() ([]language.Tag, error) {
	values := append([]string{c.Locales.Default}, c.Locales.Supported...)
	tags, err := locale.ParseTags(values...)
	if err != nil {
		return nil, err
	}
	seen := make(map[language.Tag]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

// LocaleProvider builds the locale negotiator of the configuration.
func (c *Config) LocaleProvider() (locale.Provider, error) {
	tags, err := c.SupportedLocales()
	if err != nil {
		return nil, err
	}
	n := locale.NewNegotiator(tags...)
	n.CookieName = c.Locales.Cookie
	n.QueryParam = c.Locales.Query
	return n, nil
}

// ServerAddress returns the listen address of `headkit serve`.
func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// ResourcesDir returns the absolute path of the resources directory, or ""
// when none is configured.
func (c *Config) ResourcesDir() string {
	return c.resolvePath(c.Resources.Dir)
}

// ManifestPath returns the absolute path of a local manifest, or "" when
// the manifest is unset or lives in S3.
func (c *Config) ManifestPath() string {
	if strings.HasPrefix(c.Resources.Manifest, "s3://") {
		return ""
	}
	return c.resolvePath(c.Resources.Manifest)
}

func (c *Config) resolvePath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("H011").
				WithDetail("No headkit.json or headkit.yaml found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its closest parent holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
