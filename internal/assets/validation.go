package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName rejects names that could address a file outside the
// asset directories or change the extension: empty names and names with
// slashes, backslashes or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
