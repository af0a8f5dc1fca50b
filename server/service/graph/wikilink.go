package graph

import (
	"iter"
	"regexp"
)

// wikilinkPattern matches [[Title]] references. Only the text between the
// delimiters matters; surrounding markup is ignored.
var wikilinkPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// ExtractWikilinks returns the titles referenced from content as [[Title]],
// in document order. The sequence is lazy and restartable; duplicates are
// preserved so callers see repeated references as repeated.
func ExtractWikilinks(content string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, match := range wikilinkPattern.FindAllStringSubmatchIndex(content, -1) {
			if !yield(content[match[2]:match[3]]) {
				return
			}
		}
	}
}
