package extractor

import (
	"fmt"
	"strings"
	"unicode"
)

// Field is one logical column of a Record.
type Field int

const (
	FieldStormName Field = iota
	FieldDatesActive
	FieldAreasAffected
	FieldDeaths

	fieldCount
)

func (f Field) String() string {
	switch f {
	case FieldStormName:
		return "storm name"
	case FieldDatesActive:
		return "dates active"
	case FieldAreasAffected:
		return "areas affected"
	case FieldDeaths:
		return "deaths"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Columns names the source header expected for each field.
type Columns struct {
	StormName     string `json:"storm_name"`
	DatesActive   string `json:"dates_active"`
	AreasAffected string `json:"areas_affected"`
	Deaths        string `json:"deaths"`
}

// DefaultColumns are the header texts of the Wikipedia season summary table
// after text-node stripping.
var DefaultColumns = Columns{
	StormName:     "Stormname",
	DatesActive:   "Dates active",
	AreasAffected: "Areas affected",
	Deaths:        "Deaths",
}

func (c Columns) name(f Field) string {
	switch f {
	case FieldStormName:
		return c.StormName
	case FieldDatesActive:
		return c.DatesActive
	case FieldAreasAffected:
		return c.AreasAffected
	default:
		return c.Deaths
	}
}

// MissingColumnError reports a required column absent from the discovered headers.
type MissingColumnError struct {
	Field     Field
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q for %s not found among %q", e.Column, e.Field, e.Available)
}

// Projection maps each field to its position in a source row.
type Projection struct {
	index   [fieldCount]int
	headers [fieldCount]string
}

// Negotiate matches columns against the discovered headers. A header matches
// when it equals the expected name, or failing that when both agree ignoring
// case and whitespace.
func Negotiate(headers []string, columns Columns) (Projection, error) {
	var p Projection
	for f := Field(0); f < fieldCount; f++ {
		want := columns.name(f)
		idx := indexOf(headers, want)
		if idx < 0 {
			return Projection{}, &MissingColumnError{Field: f, Column: want, Available: headers}
		}
		p.index[f] = idx
		p.headers[f] = headers[idx]
	}
	return p, nil
}

func indexOf(headers []string, want string) int {
	for i, h := range headers {
		if h == want {
			return i
		}
	}
	key := normalizeName(want)
	if key == "" {
		return -1
	}
	for i, h := range headers {
		if normalizeName(h) == key {
			return i
		}
	}
	return -1
}

func normalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// Index returns the source position of f.
func (p Projection) Index(f Field) int {
	return p.index[f]
}

// Headers returns the matched source header names in field order.
func (p Projection) Headers() []string {
	return p.headers[:]
}

// Project picks the projected cells out of a source row. Cells past the end
// of a short row are empty.
func (p Projection) Project(cells []string) Record {
	get := func(f Field) string {
		if i := p.index[f]; i < len(cells) {
			return cells[i]
		}
		return ""
	}
	return Record{
		StormName:     get(FieldStormName),
		DatesActive:   get(FieldDatesActive),
		AreasAffected: get(FieldAreasAffected),
		Deaths:        get(FieldDeaths),
	}
}
