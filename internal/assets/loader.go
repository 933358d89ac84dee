package assets

// AssetLoader loads theme stylesheets and page templates by name.
type AssetLoader interface {
	// LoadStyle returns the CSS of a theme (name without .css).
	LoadStyle(name string) (string, error)

	// LoadTemplate returns an HTML template (name without .html).
	LoadTemplate(name string) (string, error)
}
