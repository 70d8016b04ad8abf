package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	rerrors "github.com/Iron-Ham/refract/internal/errors"
	"github.com/Iron-Ham/refract/internal/refract"
	"github.com/Iron-Ham/refract/internal/stream"
	tuimsg "github.com/Iron-Ham/refract/internal/tui/msg"
)

type labelProps struct {
	Text    string
	OnPress func(string)
}

func labelEnhanced(got *[]string) *refract.Enhanced[labelProps, string] {
	effects := func(labelProps) func(*refract.Component) stream.Observable[string] {
		return func(c *refract.Component) stream.Observable[string] {
			return stream.Merge(
				stream.MapTo[struct{}, string](c.Mount(), "mount"),
				refract.Observe[string](c, "text"),
				stream.Map(refract.Observe[string](c, "onPress"), func(s string) string { return "press:" + s }),
				stream.MapTo[struct{}, string](c.Unmount(), "unmount"),
			)
		}
	}
	handlers := func(labelProps) refract.EffectHandler[string] {
		return func(e string) { *got = append(*got, e) }
	}
	return refract.WithEffects(handlers, effects)(func(p labelProps) string { return "[" + p.Text + "]" })
}

func TestModel_Lifecycle(t *testing.T) {
	var got []string
	m := NewModel(labelEnhanced(&got), labelProps{Text: "a"})

	if cmd := m.Init(); cmd != nil {
		t.Fatalf("Init() returned a command: %v", cmd())
	}
	if m.View() != "[a]" {
		t.Errorf("View() = %q", m.View())
	}

	m.Update(tuimsg.PropsMsg[labelProps]{Props: labelProps{Text: "b"}})
	if m.View() != "[b]" {
		t.Errorf("View() after update = %q", m.View())
	}

	_, cmd := m.Update(tuimsg.UnmountMsg{})
	if cmd != nil {
		t.Error("UnmountMsg without Quit should not quit")
	}
	m.Update(tuimsg.PropsMsg[labelProps]{Props: labelProps{Text: "c"}})

	if strings.Join(got, ",") != "mount,a,b,unmount" {
		t.Errorf("effects = %v", got)
	}
}

func TestModel_UnmountQuits(t *testing.T) {
	var got []string
	m := NewModel(labelEnhanced(&got), labelProps{}, WithQuitOnUnmount[labelProps, string]())
	m.Init()

	_, cmd := m.Update(tuimsg.UnmountMsg{})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg, got %T", cmd())
	}
	if m.View() != "" {
		t.Errorf("View() after quit = %q", m.View())
	}
}

func TestModel_InputHandlerReceivesDecoratedProps(t *testing.T) {
	var got []string
	var pressed []string
	props := labelProps{Text: "a", OnPress: func(s string) { pressed = append(pressed, s) }}

	m := NewModel(labelEnhanced(&got), props,
		WithInputHandler[labelProps, string](func(k tea.KeyMsg, p labelProps) tea.Cmd {
			p.OnPress(k.String())
			return nil
		}),
	)
	m.Init()
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	if strings.Join(got, ",") != "mount,a,press:x" {
		t.Errorf("effects = %v", got)
	}
	if len(pressed) != 1 || pressed[0] != "x" {
		t.Errorf("host callback calls = %v", pressed)
	}
}

func TestModel_MountFailure(t *testing.T) {
	effects := func(labelProps) func(*refract.Component) stream.Observable[string] {
		return nil
	}
	handlers := func(labelProps) refract.EffectHandler[string] { return func(string) {} }
	m := NewModel(refract.WithEffects(handlers, effects)(nil), labelProps{})

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected an error command")
	}
	errMsg, ok := cmd().(tuimsg.ErrMsg)
	if !ok {
		t.Fatalf("expected ErrMsg, got %T", cmd())
	}
	var cfgErr *rerrors.ConfigurationError
	if !errors.As(errMsg.Err, &cfgErr) {
		t.Errorf("expected ConfigurationError, got %v", errMsg.Err)
	}

	m.Update(errMsg)
	if !errors.Is(m.Err(), errMsg.Err) {
		t.Errorf("Err() = %v", m.Err())
	}

	// Keys are ignored while nothing is mounted.
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command for input without a mounted instance")
	}
}

func TestModel_RunMsg(t *testing.T) {
	var got []string
	m := NewModel(labelEnhanced(&got), labelProps{Text: "a"})
	m.Init()

	ran := false
	if _, cmd := m.Update(tuimsg.RunMsg{Fn: func() { ran = true }}); cmd != nil {
		t.Error("expected no command from RunMsg")
	}
	if !ran {
		t.Error("expected RunMsg to run its function on the update loop")
	}
	m.Update(tuimsg.RunMsg{})
}
