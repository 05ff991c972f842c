// Package modal describes modal dialogs.
package modal

import (
	"html/template"
	"strings"

	"github.com/trezcool/masomo-admin/ui/button"
)

type Size int

const (
	Medium Size = iota
	Small
	Large
	XLarge
	Full
)

var sizeClasses = map[Size]string{
	Small:  "max-w-sm",
	Medium: "max-w-lg",
	Large:  "max-w-2xl",
	XLarge: "max-w-4xl",
	Full:   "max-w-full mx-4",
}

const panelClasses = "relative w-full rounded-lg bg-white shadow-xl"

type Modal struct {
	ID             string
	Title          string
	Size           Size
	Open           bool
	CloseOnOverlay bool
	CloseOnEscape  bool
	ShowClose      bool
	// CloseHref is followed when the modal is dismissed.
	CloseHref string
	// Message is plain text shown above Body.
	Message string
	Body    template.HTML
	Footer  []button.Button
}

// New returns a closed modal with the default dismiss behaviour.
func New(id, title string) *Modal {
	return &Modal{
		ID:             id,
		Title:          title,
		CloseOnOverlay: true,
		CloseOnEscape:  true,
		ShowClose:      true,
	}
}

// Confirm returns a closed confirmation modal for a destructive action.
func Confirm(id, title, message, confirmLabel string) *Modal {
	m := New(id, title)
	m.Size = Small
	m.Message = message
	m.Footer = []button.Button{
		{Label: "Cancel", Variant: button.Secondary, Name: "action", Value: "cancel"},
		{Label: confirmLabel, Type: "submit", Variant: button.Danger, Name: "action", Value: "confirm"},
	}
	return m
}

// CloseTo sets the URL dismissing the modal, used by the close button and the
// cancel buttons of the footer.
func (m *Modal) CloseTo(href string) {
	m.CloseHref = href
	for i, b := range m.Footer {
		if b.Value == "cancel" {
			m.Footer[i].Href = href
		}
	}
}

func (m *Modal) Show() { m.Open = true }
func (m *Modal) Hide() { m.Open = false }

// TitleID is the id of the title element, referenced by aria-labelledby.
func (m *Modal) TitleID() string {
	return m.ID + "-title"
}

func (m *Modal) Classes() string {
	size, ok := sizeClasses[m.Size]
	if !ok {
		size = sizeClasses[Medium]
	}
	return strings.Join([]string{panelClasses, size}, " ")
}
