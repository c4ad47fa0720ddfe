package head

import "fmt"

// Stage is the deployment stage of the application.
type Stage string

const (
	StageDevelopment Stage = "Development"
	StageUnitTest    Stage = "UnitTest"
	StageSystemTest  Stage = "SystemTest"
	StageProduction  Stage = "Production"
)

// ParseStage parses a stage name. The empty string is Production.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case "":
		return StageProduction, nil
	case StageDevelopment, StageUnitTest, StageSystemTest, StageProduction:
		return Stage(s), nil
	default:
		return "", fmt.Errorf("unknown project stage %q", s)
	}
}

// Config holds the application wide settings of the head renderer.
// A Config must not change once passed to NewRenderer.
type Config struct {
	// Theme is a theme name, an expression such as "#{cookie.theme}", or
	// "none". Empty selects the default theme.
	Theme string

	PrimeIcons             bool
	ClientSideValidation   bool
	BeanValidation         bool
	ClientSideLocalization bool

	// CookiesSecure allows the client to mark cookies Secure when the
	// request itself is secure.
	CookiesSecure bool

	// CookiesSameSite is written to the client settings when not empty.
	CookiesSameSite string

	ValidateEmptyFields        bool
	InterpretEmptyStringAsNull bool
	EarlyPostParamEvaluation   bool
	PartialSubmit              bool

	// MoveScriptsToBottom emits initialization scripts without the DOM
	// readiness wrapper. The caller must place them after the body.
	MoveScriptsToBottom bool

	ProjectStage Stage
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		PrimeIcons:      true,
		CookiesSecure:   true,
		CookiesSameSite: "Strict",
		ProjectStage:    StageProduction,
	}
}

// IsDevelopment reports whether diagnostics such as warnings are enabled.
func (c Config) IsDevelopment() bool {
	return c.ProjectStage == StageDevelopment
}
