package assets

// Built-in theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	DefaultTheme = ThemeDark
)

// PageTemplate is the name of the template every note is rendered into.
const PageTemplate = "page"
