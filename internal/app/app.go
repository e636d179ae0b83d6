package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the login screen.
func newAppModel(opts Options) AppModel {
	f := newFlow(opts)
	return AppModel{
		router: router.New(f.login()),
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if !layout.Fits(m.width, m.height) {
		v.SetContent(layout.TooSmall(m.width, m.height))
		return v
	}

	active := m.router.Active()
	var chrome layout.Chrome
	if active != nil {
		chrome.Title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		chrome.Status = sp.Status()
	}
	chrome.Hints = m.hints(active)

	v.SetContent(layout.Compose(m.width, m.height, chrome, m.router.View))
	return v
}

// hints are the active screen's own, or a default for its stack depth.
func (m AppModel) hints(active screen.Screen) []layout.KeyHint {
	if hp, ok := active.(screen.KeyHintProvider); ok {
		return hp.KeyHints()
	}
	first := layout.KeyHint{Key: "Enter", Description: "Seleccionar"}
	if m.router.Depth() > 1 {
		first = layout.KeyHint{Key: "Esc", Description: "Volver"}
	}
	return []layout.KeyHint{first, {Key: "Ctrl+C", Description: "Salir"}}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
