package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/screen"
)

// Navigation messages. Screens return them from commands; the router acts
// on them before anything reaches the active screen.
type (
	PushScreenMsg    struct{ Screen screen.Screen } // on top
	ReplaceScreenMsg struct{ Screen screen.Screen } // instead of the top
	ResetScreenMsg   struct{ Screen screen.Screen } // as the only screen
	PopScreenMsg     struct{}                       // back one, never below the root
)

// Router is the stack of open screens. The top one is active.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

// Push opens s over the active screen.
func (r *Router) Push(s screen.Screen) tea.Cmd { return r.open(len(r.stack), s) }

// Replace swaps the active screen for s.
func (r *Router) Replace(s screen.Screen) tea.Cmd { return r.open(len(r.stack)-1, s) }

// Reset closes every screen and opens s.
func (r *Router) Reset(s screen.Screen) tea.Cmd { return r.open(0, s) }

// Pop closes the active screen unless it is the root.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) > 1 {
		r.stack[len(r.stack)-1] = nil
		r.stack = r.stack[:len(r.stack)-1]
	}
	return nil
}

// open keeps the bottom keep screens, stacks s on them and starts it.
func (r *Router) open(keep int, s screen.Screen) tea.Cmd {
	keep = max(keep, 0)
	r.stack = append(r.stack[:keep], s)
	return s.Init()
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int { return len(r.stack) }

// Update applies navigation messages and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case ResetScreenMsg:
		return r.Reset(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	}

	top := r.Active()
	if top == nil {
		return nil
	}
	next, cmd := top.Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

// View draws the active screen in a width x height area.
func (r *Router) View(width, height int) string {
	if top := r.Active(); top != nil {
		return top.View(width, height)
	}
	return ""
}
