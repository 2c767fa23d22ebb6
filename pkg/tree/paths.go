package tree

import (
	"path"
	"strings"
)

// Root is the path of the workspace root
const Root = "/"

// Normalize returns the canonical form of p: leading "/", no trailing "/",
// "." and ".." resolved without escaping the root.
func Normalize(p string) string {
	if p == "" || p == Root {
		return Root
	}
	cleaned := path.Clean("/" + strings.Trim(p, "/"))
	if cleaned == "." || cleaned == "" {
		return Root
	}
	return cleaned
}

// Join builds a child path from a parent path and a name
func Join(parentPath, name string) string {
	parentPath = Normalize(parentPath)
	if parentPath == Root {
		return "/" + name
	}
	return parentPath + "/" + name
}

// Parent returns the parent folder of p (the root is its own parent)
func Parent(p string) string {
	p = Normalize(p)
	if p == Root {
		return Root
	}
	idx := strings.LastIndex(p, "/")
	if idx <= 0 {
		return Root
	}
	return p[:idx]
}

// Base returns the last segment of p ("" for the root)
func Base(p string) string {
	p = Normalize(p)
	if p == Root {
		return ""
	}
	return p[strings.LastIndex(p, "/")+1:]
}

// Split returns the ordered segments of p
func Split(p string) []string {
	p = strings.Trim(Normalize(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// FromSegments is the inverse of Split
func FromSegments(segments []string) string {
	if len(segments) == 0 {
		return Root
	}
	return "/" + strings.Join(segments, "/")
}

// IsAncestor reports whether ancestor is p or one of its parents
func IsAncestor(ancestor, p string) bool {
	ancestor = Normalize(ancestor)
	p = Normalize(p)
	if ancestor == Root || ancestor == p {
		return true
	}
	return strings.HasPrefix(p, ancestor+"/")
}

// Rebase replaces the oldPrefix of p with newPrefix. p is returned
// unchanged when oldPrefix is not an ancestor of it.
func Rebase(p, oldPrefix, newPrefix string) string {
	p = Normalize(p)
	oldPrefix = Normalize(oldPrefix)
	if !IsAncestor(oldPrefix, p) {
		return p
	}
	rest := strings.TrimPrefix(p, oldPrefix)
	if oldPrefix == Root {
		rest = p
	}
	return Normalize(Normalize(newPrefix) + "/" + strings.TrimPrefix(rest, "/"))
}
