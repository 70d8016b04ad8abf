package cmd

import (
	"slices"

	"github.com/Iron-Ham/refract/internal/config"
	"github.com/Iron-Ham/refract/internal/errors"
	"github.com/Iron-Ham/refract/internal/event"
	"github.com/Iron-Ham/refract/internal/logging"
	"github.com/Iron-Ham/refract/internal/refract"
	"github.com/Iron-Ham/refract/internal/tui"
)

// runtime is what every command needs once configuration is loaded: the
// validated config, the logger and the wrapper options derived from them.
type runtime struct {
	cfg    *config.Config
	logger *logging.Logger
	bus    *event.Bus
	opts   []refract.Option
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(cfg.Logging.LogDir(), cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
	}

	rt := &runtime{cfg: cfg, logger: logger}
	rt.opts = append(rt.opts, refract.WithErrorHandler(func(err error) {
		logger.Error("effect stream failed", "error", err, "severity", errors.GetSeverity(err).String())
	}))
	if cfg.Stream.Binding == config.BindingBus {
		rt.bus = event.NewBus(event.WithLogger(logger))
		rt.opts = append(rt.opts, refract.WithBinding(event.NewBinding(rt.bus)), refract.WithBus(rt.bus))
		if _, err := rt.bus.SubscribePattern("channel.**", traceChannel(logger)); err != nil {
			return nil, err
		}
	}
	logger.Debug("runtime ready", "binding", cfg.Stream.Binding)
	return rt, nil
}

// traceChannel logs every value and completion crossing a bus-bound channel.
func traceChannel(logger *logging.Logger) event.Handler {
	return func(e event.Event) {
		ch, ok := e.(event.ChannelEvent)
		if !ok {
			return
		}
		if ch.Kind == event.ChannelComplete {
			logger.Debug("channel completed", "topic", e.EventType())
			return
		}
		logger.Debug("channel value", "topic", e.EventType(), "value", ch.Value)
	}
}

// hostedOptions returns the wrapper options for a component hosted by a
// TUI program: asynchronous effects are marshalled onto the program's
// event loop through sched.
func (r *runtime) hostedOptions(sched *tui.Scheduler) []refract.Option {
	return append(slices.Clone(r.opts), refract.WithScheduler(sched.Schedule))
}

// appOptions returns the TUI options implied by the config.
func (r *runtime) appOptions(sched *tui.Scheduler) []tui.AppOption {
	opts := []tui.AppOption{tui.WithAppLogger(r.logger), tui.WithScheduler(sched)}
	if r.cfg.TUI.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	return opts
}

func (r *runtime) Close() {
	if r.bus != nil {
		r.bus.Clear()
	}
	_ = r.logger.Close()
}
