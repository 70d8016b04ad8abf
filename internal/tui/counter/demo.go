package counter

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/refract/internal/errors"
	"github.com/Iron-Ham/refract/internal/logging"
	"github.com/Iron-Ham/refract/internal/refract"
	"github.com/Iron-Ham/refract/internal/tui"
	tuimsg "github.com/Iron-Ham/refract/internal/tui/msg"
	"github.com/Iron-Ham/refract/internal/tui/styles"
)

// Demo is the interactive counter program. It hosts the counter component
// through a tui.Model and adds the effect log, the set-value prompt and the
// help line around it.
type Demo struct {
	host  *tui.Model[Props, Effect]
	store *Store
	log   *Log
	keys  KeyMap
	help  help.Model
	input textinput.Model

	prompting bool
	err       error
	status    string
	setValue  int
	quitting  bool
}

// DemoConfig configures NewDemo.
type DemoConfig struct {
	Initial  int
	SetValue int // prefilled in the set-value prompt
	LogSize  int
	Logger   *logging.Logger
	Options  []refract.Option
}

// NewDemo builds the demo around a fresh store.
func NewDemo(cfg DemoConfig) *Demo {
	store := NewStore(cfg.Initial)
	log := NewLog(cfg.LogSize)
	enhanced := Enhance(log, cfg.Logger, cfg.Options...)

	ti := textinput.New()
	ti.Placeholder = "new value"
	ti.CharLimit = 12
	ti.Width = 14
	ti.Prompt = styles.Prompt.Render("set › ")

	d := &Demo{
		store:    store,
		log:      log,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		input:    ti,
		setValue: cfg.SetValue,
	}
	d.host = tui.NewModel(enhanced, store.Props(),
		tui.WithInputHandler[Props, Effect](d.handleKey),
		tui.WithQuitOnUnmount[Props, Effect](),
	)
	return d
}

// Store returns the demo's host store.
func (d *Demo) Store() *Store {
	return d.store
}

// Log returns the effect log.
func (d *Demo) Log() *Log {
	return d.log
}

// Instance returns the hosted component instance.
func (d *Demo) Instance() *refract.Instance[Props, Effect] {
	return d.host.Instance()
}

// Err returns the error currently shown, if any. Input errors take
// precedence over host errors.
func (d *Demo) Err() error {
	if d.err != nil {
		return d.err
	}
	return d.host.Err()
}

// Init mounts the counter.
func (d *Demo) Init() tea.Cmd {
	return d.host.Init()
}

// Update routes key input to the prompt while it is open and everything
// else to the host model.
func (d *Demo) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.help.Width = msg.Width
		return d, nil

	case tea.KeyMsg:
		if d.prompting {
			return d, d.updatePrompt(msg)
		}

	case tuimsg.UnmountMsg:
		d.quitting = true

	case tuimsg.EffectMsg:
		d.status = msg.Text
		return d, nil

	case tuimsg.ErrMsg:
		d.err = msg.Err
		return d, nil
	}

	_, cmd := d.host.Update(msg)
	return d, cmd
}

// handleKey is the host input handler. props carries the decorated
// setValue callback.
func (d *Demo) handleKey(k tea.KeyMsg, props Props) tea.Cmd {
	switch {
	case key.Matches(k, d.keys.Quit):
		return unmount
	case key.Matches(k, d.keys.Increment):
		d.store.Add(1)
		return d.refresh
	case key.Matches(k, d.keys.Decrement):
		d.store.Add(-1)
		return d.refresh
	case key.Matches(k, d.keys.Set):
		d.prompting = true
		d.status = ""
		d.input.SetValue(strconv.Itoa(d.setValue))
		d.input.CursorEnd()
		return d.input.Focus()
	case key.Matches(k, d.keys.Help):
		d.help.ShowAll = !d.help.ShowAll
	}
	return nil
}

func (d *Demo) updatePrompt(k tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(k, d.keys.Cancel):
		d.closePrompt()
		return nil
	case key.Matches(k, d.keys.Confirm):
		raw := strings.TrimSpace(d.input.Value())
		v, err := strconv.Atoi(raw)
		if err != nil {
			verr := errors.NewValidationError("value must be an integer").WithValue(raw).WithCause(err)
			return func() tea.Msg { return tuimsg.ErrMsg{Err: verr} }
		}
		d.closePrompt()
		d.err = nil
		d.Instance().Props().SetValue(v)
		return d.refresh
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(k)
	return cmd
}

func (d *Demo) closePrompt() {
	d.prompting = false
	d.input.Blur()
	d.input.Reset()
}

// refresh sends the store's current props to the host.
func (d *Demo) refresh() tea.Msg {
	return tuimsg.PropsMsg[Props]{Props: d.store.Props()}
}

func unmount() tea.Msg {
	return tuimsg.UnmountMsg{Quit: true}
}

// View renders the counter, the effect log and the help line.
func (d *Demo) View() string {
	if d.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(styles.Title.Render("refract counter"))
	b.WriteString("\n")
	b.WriteString(styles.ContentBox.Render(d.host.View()))
	b.WriteString("\n")
	b.WriteString(renderLog(d.log.Entries(), d.log.Total()))
	b.WriteString("\n")

	if d.prompting {
		b.WriteString(d.input.View())
		b.WriteString("\n")
	}
	if err := d.Err(); err != nil {
		b.WriteString(styles.ErrorBanner.Render(styles.Truncate(err.Error(), d.help.Width)))
		b.WriteString("\n")
	} else if d.status != "" {
		b.WriteString(styles.Muted.Render(styles.Truncate(d.status, d.help.Width)))
		b.WriteString("\n")
	}
	b.WriteString(styles.HelpBar.Render(d.help.View(d.keys)))
	return b.String()
}
