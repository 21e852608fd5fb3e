package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/ie-effects/decoder"
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	changedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	driverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func recordTitle(i int, block string, rec *decoder.Record) string {
	return fmt.Sprintf("#%d %s  %d %s  [%s, %s]", i, block, rec.Opcode, rec.Name, rec.Layout.Version(), rec.Context)
}

// renderRecord prints one field per line. Fields whose ids are in changed
// are highlighted when styled.
func renderRecord(i int, block string, rec *decoder.Record, styled bool, changed map[layout.ID]bool) string {
	var b strings.Builder
	title := recordTitle(i, block, rec)
	if styled {
		title = titleStyle.Render(title)
	}
	b.WriteString(title)
	b.WriteString("\n")
	for _, f := range rec.Fields {
		b.WriteString(fieldLine(f, styled, changed[f.ID]))
		b.WriteString("\n")
	}
	return b.String()
}

func fieldLine(f field.Descriptor, styled, changed bool) string {
	off := fmt.Sprintf("0x%04x", f.Offset)
	name := fmt.Sprintf("%-32s", f.Name)
	val := f.Display()
	if !styled {
		return off + "  " + name + " " + val
	}
	vs := valueStyle
	if changed {
		vs = changedStyle
	}
	return offsetStyle.Render(off) + "  " + nameStyle.Render(name) + " " + vs.Render(val)
}

type fieldView struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Offset int      `json:"offset"`
	Length int      `json:"length"`
	Kind   string   `json:"kind"`
	Value  string   `json:"value"`
	Labels []string `json:"labels,omitempty"`
	Types  []string `json:"types,omitempty"`
}

type recordView struct {
	Index   int         `json:"index"`
	Block   string      `json:"block"`
	Opcode  int         `json:"opcode"`
	Name    string      `json:"name"`
	Layout  string      `json:"layout"`
	Context string      `json:"context"`
	Fields  []fieldView `json:"fields"`
}

func newRecordView(i int, block string, rec *decoder.Record) recordView {
	v := recordView{
		Index:   i,
		Block:   block,
		Opcode:  rec.Opcode,
		Name:    rec.Name,
		Layout:  rec.Layout.Name(),
		Context: rec.Context.String(),
		Fields:  make([]fieldView, len(rec.Fields)),
	}
	for j, f := range rec.Fields {
		v.Fields[j] = fieldView{
			ID:     f.ID.Key(),
			Name:   f.Name,
			Offset: f.Offset,
			Length: f.Length,
			Kind:   f.Value.Kind.String(),
			Value:  f.Display(),
			Labels: f.Value.Labels,
			Types:  f.Value.Types,
		}
	}
	return v
}

// parseValue reads user input for a field of kind k. Numeric kinds accept
// decimal, 0x hex and negative values.
func parseValue(k field.Kind, s string) (field.Value, error) {
	s = strings.TrimSpace(s)
	switch {
	case k == field.KindFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return field.Value{}, fmt.Errorf("not a number: %q", s)
		}
		return field.Value{Kind: k, Float: f}, nil
	case k == field.KindResource:
		return field.Value{Kind: k, Text: strings.ToUpper(s)}, nil
	case k.Textual():
		return field.Value{Kind: k, Text: s}, nil
	case k.Numeric():
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return field.Value{}, fmt.Errorf("not an integer: %q", s)
		}
		return field.Value{Kind: k, Int: n}, nil
	}
	return field.Value{}, fmt.Errorf("%s fields are not editable", k)
}
