package pathmatch

import "strings"

// Resolve returns path as a relative POSIX path: backslashes become
// slashes, empty and "." segments are dropped and ".." removes the
// previous segment. A ".." that would climb above the root is dropped.
// The result has no leading or trailing slash.
func Resolve(path string) string {
	path = strings.ReplaceAll(strings.TrimSpace(path), `\`, "/")

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		seg = strings.TrimSpace(seg)
		switch seg {
		case "", ".":
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, seg)
		}
	}
	return strings.Join(segments, "/")
}

// reversedSegments splits a resolved path and returns its segments with
// the file name first. An empty path has no segments.
func reversedSegments(resolved string) []string {
	if resolved == "" {
		return nil
	}
	segs := strings.Split(resolved, "/")
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs
}

// commonPrefixLen counts the leading elements a and b share.
func commonPrefixLen(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
