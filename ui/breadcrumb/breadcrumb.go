// Package breadcrumb builds breadcrumb trails from a path supplied by the caller.
package breadcrumb

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Crumb is one breadcrumb item. The current (last) crumb has no Href.
type Crumb struct {
	Label   string
	Href    string
	Current bool
}

// AriaCurrent returns the aria-current attribute value of the crumb.
func (c Crumb) AriaCurrent() string {
	if c.Current {
		return "page"
	}
	return ""
}

type Options struct {
	// Home is prepended when its Label is set.
	Home Crumb
	// Labels overrides the label derived from a path segment.
	Labels map[string]string
	// Separator rendered between crumbs; "/" by default.
	Separator string
}

// Label derives a display label from a path segment: "class-rooms" → "Class Rooms".
func Label(segment string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

// Build returns the breadcrumbs of path, e.g. "/admin/students/42".
func Build(path string, opts Options) []Crumb {
	segments := make([]string, 0, 4)
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	crumbs := make([]Crumb, 0, len(segments)+1)
	if opts.Home.Label != "" {
		home := opts.Home
		if home.Href == "" {
			home.Href = "/"
		}
		crumbs = append(crumbs, home)
	}

	href := ""
	for _, seg := range segments {
		href += "/" + seg
		label, ok := opts.Labels[seg]
		if !ok {
			label = Label(seg)
		}
		crumbs = append(crumbs, Crumb{Label: label, Href: href})
	}
	return markCurrent(crumbs)
}

// FromItems uses an explicit list of crumbs; the last one becomes current.
func FromItems(items ...Crumb) []Crumb {
	crumbs := make([]Crumb, len(items))
	copy(crumbs, items)
	return markCurrent(crumbs)
}

func markCurrent(crumbs []Crumb) []Crumb {
	for i := range crumbs {
		crumbs[i].Current = false
	}
	if n := len(crumbs); n > 0 {
		crumbs[n-1].Current = true
		crumbs[n-1].Href = ""
	}
	return crumbs
}
