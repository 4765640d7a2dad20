package constants

import "strings"

// AllowedExtensions holds the page fragment file extensions picked up from a document directory.
var AllowedExtensions = map[string]struct{}{
	"md":   {},
	"txt":  {},
	"json": {},
}

// ExportFormats are the serializations offered for result sets.
var ExportFormats = []string{"csv", "xlsx"}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
