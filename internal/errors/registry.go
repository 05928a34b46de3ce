package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Scope Errors (E001-E099)
	// ============================================

	"E001": {
		Category:   CategoryScope,
		Message:    "Accessor used outside its provider scope",
		Detail:     "A context or store accessor ran where no live provider exists in the owner chain. This usually means the provider was unmounted, or the consumer was never mounted under one.",
		Suggestion: "Mount the consumer under its provider, e.g. dispatch 'mount' on the Context API page",
	},
	"E002": {
		Category:   CategoryScope,
		Message:    "Store closed",
		Detail:     "The lab or its store has been closed. Atoms can no longer be read or written.",
		Suggestion: "Create a new lab",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Config parse error",
		Detail:   "The configuration file could not be parsed.",
	},
	"E121": {
		Category:   CategoryConfig,
		Message:    "Unsupported config format",
		Detail:     "Configuration files must end in .json, .yaml or .yml.",
		Suggestion: "Rename the file to memolab.json or memolab.yaml",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is outside its allowed range.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E141": {
		Category: CategoryCLI,
		Message:  "Config file not found",
		Detail:   "No memolab.json or memolab.yaml was found.",
	},
	"E142": {
		Category:   CategoryCLI,
		Message:    "Invalid action syntax",
		Detail:     "Actions are written as name or name=argument.",
		Suggestion: "memolab run /optimisation/memo increment select=memo",
	},

	// ============================================
	// Lab Errors (E200-E299)
	// ============================================

	"E201": {
		Category:   CategoryNotFound,
		Message:    "Unknown page",
		Detail:     "No tutorial page is mounted at this path.",
		Suggestion: "Run 'memolab pages' to list the available pages",
	},
	"E202": {
		Category:   CategoryValidation,
		Message:    "Unknown action",
		Detail:     "The page does not accept this action.",
		Suggestion: "Run 'memolab pages' to list each page's actions",
	},
	"E203": {
		Category: CategoryValidation,
		Message:  "Invalid action argument",
		Detail:   "The action was given an argument it does not accept.",
	},

	// ============================================
	// Internal Errors (E500)
	// ============================================

	"E500": {
		Category: CategoryInternal,
		Message:  "Internal error",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
