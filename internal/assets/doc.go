// Package assets provides the page themes and HTML templates used to serve
// notes.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from the go:embed filesystem
//	    ├── FilesystemLoader  - loads from a directory on disk
//	    └── AssetResolver     - custom directory first, embedded fallback
//
// A notes directory may ship its own look by adding files under an assets
// directory; anything it does not override comes from the embedded set.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {theme}.css          # dark.css, light.css, or any custom theme
//	└── templates/
//	    └── {name}.html          # page.html wraps every rendered note
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
