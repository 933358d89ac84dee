package assets

import (
	"errors"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"plain", "dark", nil},
		{"hyphen", "high-contrast", nil},
		{"underscore", "sepia_2", nil},
		{"mixed case", "Paper", nil},
		{"empty", "", ErrInvalidAssetName},
		{"forward slash", "themes/dark", ErrInvalidAssetName},
		{"backslash", `themes\dark`, ErrInvalidAssetName},
		{"parent traversal", "../dark", ErrInvalidAssetName},
		{"extension", "dark.css", ErrInvalidAssetName},
		{"hidden file", ".dark", ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssetName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
