package assets

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("embedded only", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver(\"\") error = %v", err)
		}
		if resolver.HasCustomLoader() {
			t.Error("expected no custom loader for empty path")
		}
	})

	t.Run("custom directory", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver(t.TempDir())
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if !resolver.HasCustomLoader() {
			t.Error("expected custom loader")
		}
	})

	t.Run("invalid directory", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver(filepath.Join(t.TempDir(), "absent"))
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestAssetResolver_Fallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "styles", "dark.css", "/* custom dark */")

	resolver, err := NewAssetResolver(dir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("custom overrides embedded", func(t *testing.T) {
		t.Parallel()

		css, err := resolver.LoadStyle(ThemeDark)
		if err != nil {
			t.Fatal(err)
		}
		if css != "/* custom dark */" {
			t.Errorf("LoadStyle(dark) = %q, want custom file", css)
		}
	})

	t.Run("falls back to embedded style", func(t *testing.T) {
		t.Parallel()

		css, err := resolver.LoadStyle(ThemeLight)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(css, "color-scheme: light") {
			t.Error("LoadStyle(light) did not return the embedded theme")
		}
	})

	t.Run("falls back to embedded template", func(t *testing.T) {
		t.Parallel()

		page, err := resolver.LoadTemplate(PageTemplate)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(page, "{{.Body}}") {
			t.Error("LoadTemplate(page) did not return the embedded template")
		}
	})

	t.Run("invalid names are not masked", func(t *testing.T) {
		t.Parallel()

		if _, err := resolver.LoadStyle("../dark"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("error = %v, want ErrInvalidAssetName", err)
		}
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Parallel()

		if _, err := resolver.LoadStyle("sepia"); !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("error = %v, want ErrStyleNotFound", err)
		}
	})
}
