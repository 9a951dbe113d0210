// Package model holds the column and row types shared by the ordering,
// sorting, filtering and rendering packages.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// DisplayAs is the declared display kind of a column.
type DisplayAs string

// The closed set of supported display kinds.
const (
	DisplayText     DisplayAs = "text"
	DisplayNumber   DisplayAs = "number"
	DisplayDateTime DisplayAs = "datetime"
	DisplayBoolean  DisplayAs = "boolean"
	DisplayLink     DisplayAs = "link"
	DisplayImage    DisplayAs = "image"
	DisplayJSON     DisplayAs = "json"
)

// AllDisplayAs lists every supported display kind in declaration order.
var AllDisplayAs = []DisplayAs{
	DisplayText,
	DisplayNumber,
	DisplayDateTime,
	DisplayBoolean,
	DisplayLink,
	DisplayImage,
	DisplayJSON,
}

var displayAliases = map[string]DisplayAs{
	"string":     DisplayText,
	"structured": DisplayJSON,
}

// Canonical maps the "string" and "structured" aliases to text and json.
// Other values are returned unchanged.
func (d DisplayAs) Canonical() DisplayAs {
	if alias, ok := displayAliases[string(d)]; ok {
		return alias
	}
	return d
}

// Valid reports whether d is one of the supported display kinds or an alias
// of one.
func (d DisplayAs) Valid() bool {
	switch d.Canonical() {
	case DisplayText, DisplayNumber, DisplayDateTime, DisplayBoolean, DisplayLink, DisplayImage, DisplayJSON:
		return true
	}
	return false
}

// ParseDisplayAs normalizes a display kind name, accepting the "string" and
// "structured" aliases. An unsupported name yields an UnknownColumnTypeError.
func ParseDisplayAs(s string) (DisplayAs, error) {
	d := DisplayAs(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", &UnknownColumnTypeError{DisplayAs: s}
	}
	return d.Canonical(), nil
}

// Alignment controls how cell content is aligned.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Column describes a single table column. Columns are supplied by the caller
// and never modified.
type Column struct {
	Name         string    `json:"name" yaml:"name"`
	Title        string    `json:"title,omitempty" yaml:"title,omitempty"`
	DisplayAs    DisplayAs `json:"displayAs" yaml:"displayAs"`
	Order        int       `json:"order" yaml:"order"`
	Visible      bool      `json:"visible" yaml:"visible"`
	AlignContent Alignment `json:"alignContent,omitempty" yaml:"alignContent,omitempty"`
	AllowSearch  bool      `json:"allowSearch,omitempty" yaml:"allowSearch,omitempty"`

	NumberFormat   string   `json:"numberFormat,omitempty" yaml:"numberFormat,omitempty"`
	DateTimeFormat string   `json:"dateTimeFormat,omitempty" yaml:"dateTimeFormat,omitempty"`
	BooleanValues  []string `json:"booleanValues,omitempty" yaml:"booleanValues,omitempty"`

	LinkURLTemplate   string `json:"linkUrlTemplate,omitempty" yaml:"linkUrlTemplate,omitempty"`
	LinkTextTemplate  string `json:"linkTextTemplate,omitempty" yaml:"linkTextTemplate,omitempty"`
	LinkTitleTemplate string `json:"linkTitleTemplate,omitempty" yaml:"linkTitleTemplate,omitempty"`
	LinkOpenInNewTab  bool   `json:"linkOpenInNewTab,omitempty" yaml:"linkOpenInNewTab,omitempty"`

	ImageURLTemplate   string `json:"imageUrlTemplate,omitempty" yaml:"imageUrlTemplate,omitempty"`
	ImageWidth         string `json:"imageWidth,omitempty" yaml:"imageWidth,omitempty"`
	ImageHeight        string `json:"imageHeight,omitempty" yaml:"imageHeight,omitempty"`
	ImageTitleTemplate string `json:"imageTitleTemplate,omitempty" yaml:"imageTitleTemplate,omitempty"`
}

// Label returns the column title, falling back to its name.
func (c Column) Label() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// Row maps column names to raw values. A missing key reads as nil.
type Row map[string]any

// ErrUnknownColumnType indicates a column whose DisplayAs is outside the
// supported set.
var ErrUnknownColumnType = errors.New("unknown column type")

// UnknownColumnTypeError carries the offending column and display kind.
type UnknownColumnTypeError struct {
	Column    string
	DisplayAs string
}

func (e *UnknownColumnTypeError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("unknown column type %q", e.DisplayAs)
	}
	return fmt.Sprintf("unknown column type %q in column %q", e.DisplayAs, e.Column)
}

// Is makes errors.Is(err, ErrUnknownColumnType) match.
func (e *UnknownColumnTypeError) Is(target error) bool {
	return target == ErrUnknownColumnType
}

// ValidateColumns checks that every column declares a supported display kind.
func ValidateColumns(columns []Column) error {
	for _, col := range columns {
		if !col.DisplayAs.Valid() {
			return &UnknownColumnTypeError{Column: col.Name, DisplayAs: string(col.DisplayAs)}
		}
	}
	return nil
}
