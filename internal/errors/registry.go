package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render Errors (H001-H009)
	// ============================================

	"H001": {
		Category: CategoryResource,
		Message:  "Resource not found",
		Detail:   "A stylesheet or script requested by the head renderer could not be resolved to a URL.",
		DocURL:   "https://headkit.dev/docs/errors/H001",
	},
	"H002": {
		Category: CategoryExpression,
		Message:  "Theme expression evaluation failed",
		Detail:   "The configured theme is an expression and it could not be evaluated to a theme name.",
		DocURL:   "https://headkit.dev/docs/errors/H002",
	},
	"H003": {
		Category: CategoryLocale,
		Message:  "Client side locale script unavailable",
		Detail:   "The locale script for the current language could not be loaded. The page renders without client side translations.",
		DocURL:   "https://headkit.dev/docs/errors/H003",
	},
	"H004": {
		Category: CategoryLocale,
		Message:  "Current locale unavailable",
		Detail:   "The locale provider could not determine a locale for this request.",
		DocURL:   "https://headkit.dev/docs/errors/H004",
	},

	// ============================================
	// Config Errors (H010-H019)
	// ============================================

	"H010": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The headkit configuration file could not be parsed or contains invalid values.",
		DocURL:   "https://headkit.dev/docs/errors/H010",
	},
	"H011": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No headkit.json or headkit.yaml was found in the project directory.",
		DocURL:   "https://headkit.dev/docs/errors/H011",
	},

	// ============================================
	// Resource Errors (H020-H029)
	// ============================================

	"H020": {
		Category: CategoryResource,
		Message:  "Resource manifest could not be loaded",
		Detail:   "The manifest mapping resources to fingerprinted paths could not be read.",
		DocURL:   "https://headkit.dev/docs/errors/H020",
	},

	// ============================================
	// Output Errors (H030-H039)
	// ============================================

	"H030": {
		Category: CategoryRender,
		Message:  "Failed to write markup",
		Detail:   "Writing to the response failed. The client may have disconnected.",
		DocURL:   "https://headkit.dev/docs/errors/H030",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
