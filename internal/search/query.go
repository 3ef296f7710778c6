// Package search evaluates the prefix query grammar against one directory
// and the application catalog.
package search

import "strings"

// Filter selects which sources a query scans and how entries match.
type Filter int

const (
	FilterAll Filter = iota
	FilterFile
	FilterFolder
	FilterApp
	FilterExtension
)

func (f Filter) String() string {
	switch f {
	case FilterFile:
		return "file"
	case FilterFolder:
		return "folder"
	case FilterApp:
		return "app"
	case FilterExtension:
		return "ext"
	default:
		return "all"
	}
}

// Query is a parsed search string. Term and Extension are lower-cased.
type Query struct {
	Filter    Filter
	Term      string
	Extension string
}

var prefixes = []struct {
	prefix string
	filter Filter
}{
	{"file:", FilterFile},
	{"folder:", FilterFolder},
	{"app:", FilterApp},
}

// Parse derives a Query from raw. Prefixes are matched case-sensitively.
func Parse(raw string) Query {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(raw, p.prefix); ok {
			return Query{Filter: p.filter, Term: strings.ToLower(strings.TrimSpace(rest))}
		}
	}
	if strings.HasPrefix(raw, ".") {
		return Query{Filter: FilterExtension, Extension: strings.ToLower(raw)}
	}
	return Query{Filter: FilterAll, Term: strings.ToLower(raw)}
}

func (q Query) scansApps() bool {
	return q.Filter == FilterAll || q.Filter == FilterApp
}

func (q Query) scansDir() bool {
	return q.Filter != FilterApp
}
