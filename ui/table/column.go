package table

import "fmt"

// Row maps a column key to its value.
type Row map[string]interface{}

// KeyFunc derives the identifier of a row.
type KeyFunc func(Row) string

// KeyField returns a KeyFunc reading the identifier from field.
func KeyField(field string) KeyFunc {
	return func(r Row) string {
		return Text(r[field])
	}
}

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

var alignClasses = map[Align]string{
	AlignLeft:   "text-left",
	AlignCenter: "text-center",
	AlignRight:  "text-right",
}

func (a Align) Class() string {
	if c, ok := alignClasses[a]; ok {
		return c
	}
	return alignClasses[AlignLeft]
}

// Column describes how a field is displayed, sorted and filtered.
type Column struct {
	Key        string
	Title      string
	Width      string // optional fixed width, e.g. "120px"
	Sortable   bool
	Filterable bool
	Align      Align
	// Render formats the cell; the default is Text(row[Key]).
	Render func(value interface{}, row Row) string
}

// Cell returns the displayed text of the column for row.
func (c Column) Cell(row Row) string {
	if c.Render != nil {
		return c.Render(row[c.Key], row)
	}
	return Text(row[c.Key])
}

// Text coerces a cell value to text. nil is the empty string.
func Text(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
