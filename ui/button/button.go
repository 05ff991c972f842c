// Package button maps button variants and sizes to their style classes.
package button

import "strings"

type Variant int

const (
	Primary Variant = iota
	Secondary
	Success
	Danger
	Warning
	Outline
	Ghost
	Link
)

type Size int

const (
	Medium Size = iota
	Small
	Large
)

const baseClasses = "inline-flex items-center justify-center font-medium rounded-md transition-colors focus:outline-none focus:ring-2 focus:ring-offset-2"

var variantClasses = map[Variant]string{
	Primary:   "bg-blue-600 text-white hover:bg-blue-700 focus:ring-blue-500",
	Secondary: "bg-gray-200 text-gray-900 hover:bg-gray-300 focus:ring-gray-500",
	Success:   "bg-green-600 text-white hover:bg-green-700 focus:ring-green-500",
	Danger:    "bg-red-600 text-white hover:bg-red-700 focus:ring-red-500",
	Warning:   "bg-yellow-500 text-white hover:bg-yellow-600 focus:ring-yellow-400",
	Outline:   "border border-gray-300 bg-white text-gray-700 hover:bg-gray-50 focus:ring-blue-500",
	Ghost:     "bg-transparent text-gray-700 hover:bg-gray-100 focus:ring-gray-500",
	Link:      "bg-transparent text-blue-600 underline-offset-4 hover:underline focus:ring-blue-500",
}

var sizeClasses = map[Size]string{
	Small:  "px-3 py-1.5 text-sm",
	Medium: "px-4 py-2 text-sm",
	Large:  "px-6 py-3 text-base",
}

var variantNames = map[string]Variant{
	"primary":   Primary,
	"secondary": Secondary,
	"success":   Success,
	"danger":    Danger,
	"warning":   Warning,
	"outline":   Outline,
	"ghost":     Ghost,
	"link":      Link,
}

// ParseVariant returns the variant named s; unknown names are Primary.
func ParseVariant(s string) Variant {
	if v, ok := variantNames[strings.ToLower(s)]; ok {
		return v
	}
	return Primary
}

// Button is the view model of a button or, when Href is set, a link styled as one.
type Button struct {
	Label     string
	Type      string // button | submit | reset
	Variant   Variant
	Size      Size
	Disabled  bool
	Loading   bool
	FullWidth bool
	Href      string
	Name      string
	Value     string
	// Form is the id of the form the button submits, when outside of it.
	Form string
}

// HTMLType defaults to "button".
func (b Button) HTMLType() string {
	switch b.Type {
	case "submit", "reset":
		return b.Type
	}
	return "button"
}

// IsDisabled is true while loading too.
func (b Button) IsDisabled() bool {
	return b.Disabled || b.Loading
}

func (b Button) Classes() string {
	variant, ok := variantClasses[b.Variant]
	if !ok {
		variant = variantClasses[Primary]
	}
	size, ok := sizeClasses[b.Size]
	if !ok {
		size = sizeClasses[Medium]
	}

	classes := []string{baseClasses, variant, size}
	if b.FullWidth {
		classes = append(classes, "w-full")
	}
	if b.IsDisabled() {
		classes = append(classes, "opacity-50 cursor-not-allowed")
	}
	if b.Loading {
		classes = append(classes, "cursor-wait")
	}
	return strings.Join(classes, " ")
}
