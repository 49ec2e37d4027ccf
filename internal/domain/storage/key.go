package storage

import "strings"

// JoinKey joins a key prefix and a filename with a single slash.
//
// Unlike path.Join it never cleans the result: "." and ".." segments are kept
// as given, only the slashes at the join point are folded.
func JoinKey(prefix, filename string) string {
	if prefix == "" {
		return filename
	}
	if filename == "" {
		return prefix
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(filename, "/")
}
