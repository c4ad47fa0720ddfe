package head

import (
	"strconv"
	"strings"

	"github.com/vango-dev/headkit/pkg/clientwindow"
)

// WindowState is the client window of a request.
type WindowState struct {
	ID string

	// InitialRedirect reports the first request after a window id was
	// assigned.
	InitialRedirect bool
}

// SettingsState holds the request derived values of the settings script.
type SettingsState struct {
	Locale      string
	ViewID      string
	ContextPath string
	Secure      bool

	// Window is nil unless a framework managed client window is active.
	Window *WindowState
}

// BuildSettingsScript returns the body of the inline script that configures
// the client runtime. Values are written as single-quoted literals without
// further escaping, except for the window id.
func BuildSettingsScript(cfg Config, st SettingsState) string {
	var b strings.Builder
	b.WriteString("if(window.PrimeFaces){")

	writeString(&b, "locale", st.Locale)
	writeString(&b, "viewId", st.ViewID)
	writeString(&b, "contextPath", st.ContextPath)
	writeBool(&b, "cookiesSecure", st.Secure && cfg.CookiesSecure)
	if cfg.CookiesSameSite != "" {
		writeString(&b, "cookiesSameSite", cfg.CookiesSameSite)
	}
	writeBool(&b, "validateEmptyFields", cfg.ValidateEmptyFields)
	writeBool(&b, "considerEmptyStringNull", cfg.InterpretEmptyStringAsNull)
	if cfg.EarlyPostParamEvaluation {
		writeBool(&b, "earlyPostParamEvaluation", true)
	}
	if cfg.PartialSubmit {
		writeBool(&b, "partialSubmit", true)
	}
	if stage := cfg.ProjectStage; stage != "" && stage != StageProduction {
		writeString(&b, "projectStage", string(stage))
	}

	if w := st.Window; w != nil {
		b.WriteString("PrimeFaces.clientwindow.init('")
		b.WriteString(clientwindow.SecureWindowID(w.ID))
		b.WriteString("', ")
		b.WriteString(strconv.FormatBool(w.InitialRedirect))
		b.WriteString(");")
	}

	b.WriteString("}")
	return b.String()
}

func writeString(b *strings.Builder, field, value string) {
	b.WriteString("PrimeFaces.settings.")
	b.WriteString(field)
	b.WriteString("='")
	b.WriteString(value)
	b.WriteString("';")
}

func writeBool(b *strings.Builder, field string, value bool) {
	b.WriteString("PrimeFaces.settings.")
	b.WriteString(field)
	b.WriteString("=")
	b.WriteString(strconv.FormatBool(value))
	b.WriteString(";")
}
