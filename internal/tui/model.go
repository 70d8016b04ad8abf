// Package tui hosts refract component instances inside a Bubbletea program.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/refract/internal/refract"
	tuimsg "github.com/Iron-Ham/refract/internal/tui/msg"
)

// InputHandler handles key input for a hosted instance. It receives the
// pass-through props, so calling one of their callbacks feeds the
// instance's callback channel.
type InputHandler[P any] func(key tea.KeyMsg, props P) tea.Cmd

// ModelOption configures a Model.
type ModelOption[P, E any] func(*Model[P, E])

// WithInputHandler forwards key input to fn.
func WithInputHandler[P, E any](fn InputHandler[P]) ModelOption[P, E] {
	return func(m *Model[P, E]) {
		m.input = fn
	}
}

// WithQuitOnUnmount makes every UnmountMsg end the program.
func WithQuitOnUnmount[P, E any]() ModelOption[P, E] {
	return func(m *Model[P, E]) {
		m.quitOnUnmount = true
	}
}

// Model is a tea.Model that drives one component instance: Init mounts it,
// PropsMsg updates it, UnmountMsg unmounts it and View renders it.
type Model[P, E any] struct {
	instance      *refract.Instance[P, E]
	initial       P
	input         InputHandler[P]
	quitOnUnmount bool

	err      error
	quitting bool
}

// NewModel creates a model hosting a new instance of enhanced, mounted with
// props when the program starts.
func NewModel[P, E any](enhanced *refract.Enhanced[P, E], props P, opts ...ModelOption[P, E]) *Model[P, E] {
	m := &Model[P, E]{
		instance: enhanced.New(),
		initial:  props,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Instance returns the hosted instance.
func (m *Model[P, E]) Instance() *refract.Instance[P, E] {
	return m.instance
}

// Err returns the last error reported to the model.
func (m *Model[P, E]) Err() error {
	return m.err
}

// Init mounts the instance. A mount failure is reported as an ErrMsg.
func (m *Model[P, E]) Init() tea.Cmd {
	if err := m.instance.Mount(m.initial); err != nil {
		return func() tea.Msg { return tuimsg.ErrMsg{Err: err} }
	}
	return nil
}

// Update handles messages and updates the model
func (m *Model[P, E]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tuimsg.PropsMsg[P]:
		if err := m.instance.Update(msg.Props); err != nil {
			m.err = err
		}
		return m, nil

	case tuimsg.UnmountMsg:
		m.instance.Unmount()
		if msg.Quit || m.quitOnUnmount {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tuimsg.ErrMsg:
		m.err = msg.Err
		return m, nil

	case tuimsg.RunMsg:
		if msg.Fn != nil {
			msg.Fn()
		}
		return m, nil

	case tea.KeyMsg:
		if m.input == nil || !m.instance.Mounted() {
			return m, nil
		}
		return m, m.input(msg, m.instance.Props())
	}
	return m, nil
}

// View renders the instance.
func (m *Model[P, E]) View() string {
	if m.quitting {
		return ""
	}
	return m.instance.Render()
}
