package storage

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var imageSignatures = map[string][]byte{
	".jpg":  {0xFF, 0xD8, 0xFF},
	".jpeg": {0xFF, 0xD8, 0xFF},
	".png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
}

// sniffLen covers the longest signature.
const sniffLen = 8

// MatchesSignature reports whether head starts with the magic bytes expected
// for the extension of name.
func MatchesSignature(name string, head []byte) bool {
	sig, ok := imageSignatures[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return false
	}
	return bytes.HasPrefix(head, sig)
}

// StoredName builds the on-disk name: the original base name with spaces
// replaced by underscores, a millisecond timestamp and the lower-cased
// extension, e.g. "a b.png" becomes "a_b.png-1700000000123.png".
func StoredName(original string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" {
		base = "image"
	}
	base = strings.ReplaceAll(base, " ", "_")
	return base + "-" + strconv.FormatInt(now.UnixMilli(), 10) + strings.ToLower(filepath.Ext(base))
}
