package navigation

import (
	"path"
	"strings"
)

// Excluded reports whether a workspace path is filtered out by patterns.
// Patterns support:
//   - Simple glob patterns: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/
//   - Path patterns: build/*, **/test/*
func Excluded(itemPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	rel := strings.TrimPrefix(itemPath, "/")
	baseName := path.Base(rel)

	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "/")
		if pattern == "" {
			continue
		}

		// Directory pattern: the folder itself and everything below it
		if dir, ok := strings.CutSuffix(pattern, "/"); ok {
			if rel == dir || strings.HasPrefix(rel, dir+"/") ||
				strings.HasSuffix(rel, "/"+dir) ||
				strings.Contains(rel, "/"+dir+"/") {
				return true
			}
			continue
		}

		// **/pattern matches pattern at any depth
		if suffix, ok := strings.CutPrefix(pattern, "**/"); ok {
			if matchGlob(baseName, suffix) || matchAnySegment(rel, suffix) {
				return true
			}
			if rel == suffix || strings.HasSuffix(rel, "/"+suffix) {
				return true
			}
			continue
		}

		if strings.Contains(pattern, "/") {
			// Pattern applies to the full path or a trailing part of it
			if matchGlob(rel, pattern) || matchTail(rel, pattern) {
				return true
			}
			continue
		}

		// Pattern applies to the base name only
		if matchGlob(baseName, pattern) {
			return true
		}
	}

	return false
}

// matchGlob performs simple glob matching
func matchGlob(name, pattern string) bool {
	matched, _ := path.Match(pattern, name)
	return matched
}

// matchTail matches pattern against the trailing segments of p
func matchTail(p, pattern string) bool {
	n := strings.Count(pattern, "/") + 1
	parts := strings.Split(p, "/")
	if len(parts) < n {
		return false
	}
	return matchGlob(strings.Join(parts[len(parts)-n:], "/"), pattern)
}

// matchAnySegment checks if any component of p matches the pattern
func matchAnySegment(p, pattern string) bool {
	for _, part := range strings.Split(p, "/") {
		if matchGlob(part, pattern) {
			return true
		}
	}
	return false
}
