package dirscan

import (
	"path/filepath"
	"strings"
)

// CxxExtensions are the extensions of files handed to the formatter. Matching is case-sensitive.
var CxxExtensions = []string{".cpp", ".cxx", ".c", ".h", ".hxx", ".hpp"}

type RuleKind uint8

const (
	// RuleDirectory ignores the directory and everything beneath it.
	RuleDirectory RuleKind = iota
	// RuleFile ignores exactly one file.
	RuleFile
)

// Rule is an absolute ignore path. Paths are kept in slash form so matching is plain string work.
type Rule struct {
	Path string
	Kind RuleKind
}

func DirRule(path string) Rule {
	return Rule{Path: normalize(path), Kind: RuleDirectory}
}

func FileRule(path string) Rule {
	return Rule{Path: normalize(path), Kind: RuleFile}
}

func normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// Matches reports whether the absolute candidate path falls under the rule.
func (r Rule) Matches(candidate string) bool {
	candidate = filepath.ToSlash(candidate)
	if r.Kind == RuleFile {
		return candidate == r.Path
	}
	return truncateAtSegment(candidate, len(r.Path)) == r.Path
}

// truncateAtSegment cuts p at the first '/' found at or after index n-1,
// so "/a/b" keeps "/a/b/c" inside the rule while "/a/bc" stays outside.
func truncateAtSegment(p string, n int) string {
	if n == 0 {
		return p
	}
	start := min(n-1, len(p))
	if i := strings.IndexByte(p[start:], '/'); i >= 0 {
		return p[:start+i]
	}
	return p
}

// IsIgnored reports whether any rule matches the candidate, stopping at the first match.
func IsIgnored(candidate string, rules []Rule) bool {
	for _, r := range rules {
		if r.Matches(candidate) {
			return true
		}
	}
	return false
}

func hasExtension(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
