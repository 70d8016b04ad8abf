package tui

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/refract/internal/logging"
	tuimsg "github.com/Iron-Ham/refract/internal/tui/msg"
)

// App wraps the Bubbletea program
type App struct {
	program   *tea.Program
	model     tea.Model
	logger    *logging.Logger
	opts      []tea.ProgramOption
	scheduler *Scheduler
}

// AppOption configures an App.
type AppOption func(*App)

// WithAltScreen runs the program in the terminal's alternate screen.
func WithAltScreen() AppOption {
	return func(a *App) {
		a.opts = append(a.opts, tea.WithAltScreen())
	}
}

// WithProgramOptions appends raw Bubbletea options, such as custom input
// and output streams.
func WithProgramOptions(opts ...tea.ProgramOption) AppOption {
	return func(a *App) {
		a.opts = append(a.opts, opts...)
	}
}

// WithAppLogger sets the logger for program lifecycle messages.
func WithAppLogger(logger *logging.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// WithScheduler attaches s to the program, so work it schedules runs on
// the event loop. The hosted model must handle tuimsg.RunMsg; Model does.
func WithScheduler(s *Scheduler) AppOption {
	return func(a *App) {
		a.scheduler = s
	}
}

// New creates a new TUI application
func New(model tea.Model, opts ...AppOption) *App {
	a := &App{model: model, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(a)
	}
	a.program = tea.NewProgram(a.model, a.opts...)
	if a.scheduler != nil {
		a.scheduler.attach(a.program.Send)
	}
	return a
}

// Send delivers msg to the running program. It is safe to call from any
// goroutine and blocks until the program accepts the message or exits.
func (a *App) Send(msg tea.Msg) {
	a.program.Send(msg)
}

// Run starts the TUI application and blocks until it exits. SIGINT,
// SIGTERM and SIGHUP unmount the hosted component and quit.
func (a *App) Run() (tea.Model, error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case sig := <-sigChan:
			a.logger.Info("signal received, unmounting", "signal", sig.String())
			a.program.Send(tuimsg.UnmountMsg{Quit: true})
		case <-done:
		}
	}()

	a.logger.Debug("program starting")
	final, err := a.program.Run()
	signal.Stop(sigChan)
	if a.scheduler != nil {
		a.scheduler.close()
	}
	if err != nil {
		a.logger.Error("program exited with error", "error", err)
		return final, err
	}
	a.logger.Debug("program exited")
	return final, nil
}
