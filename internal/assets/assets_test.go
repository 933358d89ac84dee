package assets

import (
	"errors"
	"html/template"
	"strings"
	"testing"
)

var embedded = NewEmbeddedLoader()

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		styleName string
		wantErr   error
	}{
		{"dark theme", ThemeDark, nil},
		{"light theme", ThemeLight, nil},
		{"unknown theme", "solarized", ErrStyleNotFound},
		{"empty name", "", ErrInvalidAssetName},
		{"traversal", "../secret", ErrInvalidAssetName},
		{"extension", "dark.css", ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css, err := embedded.LoadStyle(tt.styleName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
			}
			if tt.wantErr == nil && !strings.Contains(css, "color-scheme") {
				t.Errorf("LoadStyle(%q) returned unexpected CSS", tt.styleName)
			}
		})
	}
}

func TestThemesDefineTheSameVariables(t *testing.T) {
	t.Parallel()

	dark, err := embedded.LoadStyle(ThemeDark)
	if err != nil {
		t.Fatal(err)
	}
	light, err := embedded.LoadStyle(ThemeLight)
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range []string{"--fg:", "--bg:", "--todo-bg:", "--code-bg:"} {
		if !strings.Contains(dark, v) || !strings.Contains(light, v) {
			t.Errorf("variable %s missing from a theme", v)
		}
	}
	if !strings.Contains(dark, ".todo") || !strings.Contains(light, ".todo") {
		t.Error("themes must style math error placeholders")
	}
}

func TestEmbeddedLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	content, err := embedded.LoadTemplate(PageTemplate)
	if err != nil {
		t.Fatalf("LoadTemplate(%q) error = %v", PageTemplate, err)
	}
	tmpl, err := template.New("page").Parse(content)
	if err != nil {
		t.Fatalf("page template does not parse: %v", err)
	}

	var sb strings.Builder
	data := map[string]any{
		"Title":  "Kinetics",
		"Author": "",
		"Date":   "",
		"Tags":   []string{},
		"Head":   template.HTML(`<link rel="stylesheet" href="x.css">`),
		"Body":   template.HTML("<p>hello</p>"),
	}
	if err := tmpl.Execute(&sb, data); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	out := sb.String()
	for _, want := range []string{"<title>Kinetics</title>", `href="x.css"`, "<p>hello</p>"} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(out, "note-meta") {
		t.Error("metadata header rendered without metadata")
	}

	if _, err := embedded.LoadTemplate("missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(missing) error = %v, want %v", err, ErrTemplateNotFound)
	}
}
