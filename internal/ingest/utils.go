package ingest

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/purchase-orders/constants"
)

var trailingNumber = regexp.MustCompile(`(\d+)\D*$`)

// AllowedExt checks if a file extension is in the allowed set (md, txt, json).
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// PageNumber extracts the last run of digits in the file name, so po_12.md is page 12.
func PageNumber(path string) (int, bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := trailingNumber.FindStringSubmatch(base)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortNatural orders paths by page number; unnumbered files go last, by name.
func SortNatural(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		a, aok := PageNumber(paths[i])
		b, bok := PageNumber(paths[j])
		switch {
		case aok && bok && a != b:
			return a < b
		case aok != bok:
			return aok
		}
		return paths[i] < paths[j]
	})
}
