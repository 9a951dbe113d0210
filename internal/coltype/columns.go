package coltype

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/oakwood-commons/tblx/internal/model"
)

type base struct {
	column model.Column
}

func newBase(c model.Column) base {
	return base{column: c}
}

func (b base) value(row model.Row) any {
	return row[b.column.Name]
}

func (b base) cell(text string) Cell {
	align := b.column.AlignContent
	if align == "" {
		align = model.AlignLeft
	}
	return Cell{
		Text:  text,
		Align: align,
		Class: "display-as-" + string(b.column.DisplayAs),
	}
}

type textColumn struct{ base }

func (textColumn) Kind() model.DisplayAs { return model.DisplayText }

func (c textColumn) TextOf(row model.Row) string { return Stringify(c.value(row)) }

func (c textColumn) Render(row model.Row) Cell { return c.cell(c.TextOf(row)) }

type numberColumn struct {
	base
	format numberFormat
}

func newNumberColumn(c model.Column) numberColumn {
	return numberColumn{base: newBase(c), format: parseNumberFormat(c.NumberFormat)}
}

func (numberColumn) Kind() model.DisplayAs { return model.DisplayNumber }

func (c numberColumn) TextOf(row model.Row) string {
	v := c.value(row)
	if f, ok := toNumber(v); ok {
		return c.format.Format(f)
	}
	return Stringify(v)
}

func (c numberColumn) Render(row model.Row) Cell { return c.cell(c.TextOf(row)) }

type dateTimeColumn struct {
	base
	layout string
}

func newDateTimeColumn(c model.Column) dateTimeColumn {
	return dateTimeColumn{base: newBase(c), layout: MomentLayout(c.DateTimeFormat)}
}

func (dateTimeColumn) Kind() model.DisplayAs { return model.DisplayDateTime }

func (c dateTimeColumn) TextOf(row model.Row) string {
	v := c.value(row)
	if t, ok := toTime(v); ok {
		return t.Format(c.layout)
	}
	return Stringify(v)
}

func (c dateTimeColumn) Render(row model.Row) Cell { return c.cell(c.TextOf(row)) }

type booleanColumn struct {
	base
	labels [2]string
}

func newBooleanColumn(c model.Column) booleanColumn {
	labels := [2]string{"false", "true"}
	for i := 0; i < len(c.BooleanValues) && i < 2; i++ {
		labels[i] = c.BooleanValues[i]
	}
	return booleanColumn{base: newBase(c), labels: labels}
}

func (booleanColumn) Kind() model.DisplayAs { return model.DisplayBoolean }

func (c booleanColumn) TextOf(row model.Row) string {
	v := c.value(row)
	if b, ok := v.(bool); ok {
		if b {
			return c.labels[1]
		}
		return c.labels[0]
	}
	return Stringify(v)
}

func (c booleanColumn) Render(row model.Row) Cell { return c.cell(c.TextOf(row)) }

type linkColumn struct {
	base
	url, text, title template
}

func newLinkColumn(c model.Column) linkColumn {
	return linkColumn{
		base:  newBase(c),
		url:   parseTemplate(c.LinkURLTemplate, defaultTemplate),
		text:  parseTemplate(c.LinkTextTemplate, defaultTemplate),
		title: parseTemplate(c.LinkTitleTemplate, ""),
	}
}

func (linkColumn) Kind() model.DisplayAs { return model.DisplayLink }

func (c linkColumn) TextOf(row model.Row) string {
	if text := c.text.Execute(c.value(row), row); text != "" {
		return text
	}
	return c.url.Execute(c.value(row), row)
}

func (c linkColumn) Render(row model.Row) Cell {
	cell := c.cell(c.TextOf(row))
	cell.Href = c.url.Execute(c.value(row), row)
	cell.Title = c.title.Execute(c.value(row), row)
	cell.NewTab = c.column.LinkOpenInNewTab
	return cell
}

type imageColumn struct {
	base
	url, title template
}

func newImageColumn(c model.Column) imageColumn {
	return imageColumn{
		base:  newBase(c),
		url:   parseTemplate(c.ImageURLTemplate, defaultTemplate),
		title: parseTemplate(c.ImageTitleTemplate, defaultTemplate),
	}
}

func (imageColumn) Kind() model.DisplayAs { return model.DisplayImage }

func (c imageColumn) TextOf(row model.Row) string {
	return c.title.Execute(c.value(row), row)
}

func (c imageColumn) Render(row model.Row) Cell {
	cell := c.cell(c.TextOf(row))
	cell.Href = c.url.Execute(c.value(row), row)
	cell.Title = cell.Text
	return cell
}

type jsonColumn struct{ base }

func (jsonColumn) Kind() model.DisplayAs { return model.DisplayJSON }

func (c jsonColumn) TextOf(row model.Row) string {
	v := c.value(row)
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(s)); err == nil {
			return buf.String()
		}
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Stringify(v)
	}
	return string(data)
}

func (c jsonColumn) Render(row model.Row) Cell { return c.cell(c.TextOf(row)) }

// Stringify returns the plain text form of a raw value: strings verbatim,
// nil as empty, times in RFC 3339 and everything else JSON encoded.
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case time.Time:
		return s.Format(time.RFC3339)
	case []byte:
		return string(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
