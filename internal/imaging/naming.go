package imaging

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// DefaultBaseName is used when no usable base name can be derived.
const DefaultBaseName = "panel"

// BaseName derives a file-system safe base name from an input file name,
// dropping directories and the extension.
func BaseName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if s := slug.Make(base); s != "" {
		return s
	}
	return DefaultBaseName
}

// PageFileName returns the download name of the page with the given
// 1-based number, e.g. "poster_page_3.png".
func PageFileName(base string, number int) string {
	if base == "" {
		base = DefaultBaseName
	}
	return fmt.Sprintf("%s_page_%d.png", base, number)
}

// PanelFileName returns the download name of a whole-panel export.
func PanelFileName(base string, format Format) string {
	if base == "" {
		base = DefaultBaseName
	}
	return base + "." + string(format)
}
