package demo

// Meta describes one tutorial page.
type Meta struct {
	Section     string   `json:"section"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Path        string   `json:"path"`
	Actions     []string `json:"actions"`
}

// Section groups pages under a heading.
type Section struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Pages []Meta `json:"pages"`
}

const (
	SectionOptimisation = "optimisation"
	SectionState        = "state"
)

// Catalog returns the navigation structure: two sections, seven pages.
// The returned value is a fresh copy.
func Catalog() []Section {
	return []Section{
		{
			Slug:  SectionOptimisation,
			Title: "Optimisation",
			Pages: []Meta{
				meta(SectionOptimisation, "memo", "Memoisation",
					"Learn about React.memo and useMemo.",
					"increment", "select"),
				meta(SectionOptimisation, "useCallback", "useCallback",
					"Understand how to use useCallback.",
					"click", "select"),
				meta(SectionOptimisation, "useMemo", "useMemo",
					"Dive into the useMemo hook for performance.",
					"increment", "type", "select"),
			},
		},
		{
			Slug:  SectionState,
			Title: "State Management",
			Pages: []Meta{
				meta(SectionState, "useState", "useState",
					"Learn about managing local component state.",
					"increment", "decrement", "reset"),
				meta(SectionState, "useReducer", "useReducer",
					"Learn about complex state management with useReducer.",
					"increment", "decrement", "reset", "dispatch"),
				meta(SectionState, "context-api", "Context API",
					"Share state globally with Context API.",
					"increment", "decrement", "unmount", "mount"),
				meta(SectionState, "jotai", "Jotai",
					"Understand Jotai atoms and selectors",
					"increment", "decrement", "reset"),
			},
		},
	}
}

func meta(section, slug, title, description string, actions ...string) Meta {
	return Meta{
		Section:     section,
		Slug:        slug,
		Title:       title,
		Description: description,
		Path:        PagePath(section, slug),
		Actions:     actions,
	}
}

// PagePath joins a section and page slug into a page path.
func PagePath(section, slug string) string {
	return "/" + section + "/" + slug
}

// HasAction reports whether the page accepts action.
func (m Meta) HasAction(action string) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}
