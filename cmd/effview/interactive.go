package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/ie-effects/decoder"
	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/layout"
)

type modelState int

const (
	stateSelectRecord modelState = iota
	stateSelectField
	stateEditField
)

type interactiveModel struct {
	err      error
	s        *session
	status   string
	records  []*decoder.Record
	changed  map[layout.ID]bool
	input    textinput.Model
	presets  []string
	preset   int
	record   int
	field    int
	state    modelState
	dirty    bool
}

func newInteractiveModel(s *session) *interactiveModel {
	return &interactiveModel{
		s:       s,
		presets: engine.PresetNames(),
		preset:  -1,
		state:   stateSelectRecord,
	}
}

type decodedMsg struct {
	err     error
	records []*decoder.Record
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.decodeAll
}

func (m *interactiveModel) decodeAll() tea.Msg {
	recs := make([]*decoder.Record, len(m.s.file.Records))
	for i := range recs {
		rec, err := m.s.decode(i)
		if err != nil {
			return decodedMsg{err: err}
		}
		recs[i] = rec
	}
	return decodedMsg{records: recs}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateEditField {
			return m.updateEdit(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			m.move(-1)

		case "down", "j":
			m.move(1)

		case "enter":
			switch m.state {
			case stateSelectRecord:
				if len(m.records) > 0 {
					m.state = stateSelectField
					m.field = 0
					m.changed = nil
				}
			case stateSelectField:
				m.startEdit()
			}

		case "esc":
			if m.state == stateSelectField {
				m.state = stateSelectRecord
				m.changed = nil
			}

		case "g":
			// Cycle the game preset and re-decode under it.
			m.preset = (m.preset + 1) % len(m.presets)
			ctx, _ := engine.Preset(m.presets[m.preset])
			m.s.manager.SwitchContext(ctx)
			m.status = "game: " + m.presets[m.preset]
			m.changed = nil
			return m, m.decodeAll

		case "w":
			if err := os.WriteFile(m.s.path, m.s.file.Data, 0o644); err != nil {
				m.status = "write failed: " + err.Error()
			} else {
				m.dirty = false
				m.status = "wrote " + m.s.path
			}
		}

	case decodedMsg:
		m.err = msg.err
		m.records = msg.records
		if m.record >= len(m.records) {
			m.record = 0
		}
	}
	return m, nil
}

func (m *interactiveModel) move(d int) {
	switch m.state {
	case stateSelectRecord:
		m.record = clamp(m.record+d, len(m.records))
	case stateSelectField:
		m.field = clamp(m.field+d, len(m.records[m.record].Fields))
	}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m *interactiveModel) startEdit() {
	f := m.records[m.record].Fields[m.field]
	ti := textinput.New()
	ti.Prompt = f.Name + ": "
	ti.Placeholder = f.Value.Kind.String()
	ti.Width = 40
	if f.Value.Kind.Textual() {
		ti.SetValue(f.Value.Text)
	} else {
		ti.SetValue(fmt.Sprint(f.Value.Int))
	}
	ti.Focus()
	m.input = ti
	m.state = stateEditField
}

func (m *interactiveModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = stateSelectField
		return m, nil
	case "enter":
		m.applyEdit()
		m.state = stateSelectField
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyEdit writes the input into the file buffer and swaps in the
// re-described field and its dependents.
func (m *interactiveModel) applyEdit() {
	rec := m.records[m.record]
	f := rec.Fields[m.field]
	v, err := parseValue(f.Value.Kind, m.input.Value())
	if err != nil {
		m.status = err.Error()
		return
	}
	repls, err := m.s.dec.Update(m.s.context(), rec, m.s.file.Data, f.ID, v)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.changed = make(map[layout.ID]bool, len(repls))
	for _, r := range repls {
		m.changed[r.ID] = true
	}
	m.dirty = true
	m.status = fmt.Sprintf("%s updated, %d field(s) re-described", f.Name, len(repls))
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.records == nil {
		return "Decoding records..."
	}

	var b strings.Builder
	title := "Effect Viewer"
	if m.dirty {
		title += " *"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString(" ")
	b.WriteString(m.s.path)
	b.WriteString("  ")
	b.WriteString(m.s.context().String())
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectRecord:
		for i, rec := range m.records {
			line := recordTitle(i, m.s.file.Records[i].Block, rec)
			if i == m.record {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter fields • g next game • w write • q quit"))

	case stateSelectField, stateEditField:
		rec := m.records[m.record]
		drives := m.drivers(rec)
		b.WriteString(recordTitle(m.record, m.s.file.Records[m.record].Block, rec))
		b.WriteString("\n\n")
		for i, f := range rec.Fields {
			line := fieldLine(f, true, m.changed[f.ID])
			if drives[f.ID] {
				line += driverStyle.Render(" ◆")
			}
			if i == m.field {
				b.WriteString(selectedStyle.Render(">") + " " + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateEditField {
			b.WriteString(m.input.View())
			b.WriteString("\n\n")
			b.WriteString(helpStyle.Render("enter apply • esc cancel"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter edit • ◆ drives other fields • esc records • w write • q quit"))
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}
	return b.String()
}

// drivers reports the fields of rec whose edits re-describe other fields.
func (m *interactiveModel) drivers(rec *decoder.Record) map[layout.ID]bool {
	ctx := m.s.context()
	ids := m.s.dec.Registry().Resolve(ctx, rec.Opcode).Drivers(ctx)
	out := make(map[layout.ID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func runInteractive(s *session) error {
	p := tea.NewProgram(newInteractiveModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
