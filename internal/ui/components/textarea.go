package components

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// TextArea wraps bubbles/textarea for multi-line free-form answers.
type TextArea struct {
	Model textarea.Model
}

// NewTextArea creates a focused answer box of the given size.
func NewTextArea(placeholder string, width, height int) TextArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetWidth(width)
	ta.SetHeight(height)
	return TextArea{Model: ta}
}

// Focus gives the box keyboard focus.
func (t *TextArea) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes keyboard focus.
func (t *TextArea) Blur() {
	t.Model.Blur()
}

// Update handles messages.
func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the box.
func (t TextArea) View() string {
	return t.Model.View()
}

// Value returns the trimmed answer text.
func (t TextArea) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetValue replaces the answer text.
func (t *TextArea) SetValue(v string) {
	t.Model.SetValue(v)
}
