package constants

import "strings"

// NormalizeExt lowercases an extension and strips the leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

var supportedExts = map[string]struct{}{
	"pdf": {},
}

// IsSupportedExt reports whether uploads with this extension are accepted.
func IsSupportedExt(ext string) bool {
	_, ok := supportedExts[NormalizeExt(ext)]
	return ok
}
