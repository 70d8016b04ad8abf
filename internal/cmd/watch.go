package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/refract/internal/tui"
	"github.com/Iron-Ham/refract/internal/tui/counter"
	tuimsg "github.com/Iron-Ham/refract/internal/tui/msg"
	"github.com/Iron-Ham/refract/internal/watch"
)

var watchScript bool

var watchCmd = &cobra.Command{
	Use:   "watch <props.yaml>",
	Short: "Drive the counter from a properties file",
	Long: `Mount the counter with the properties in a YAML file and push every
saved revision of that file to the mounted component.

The file holds the counter's data properties:

  value: 3

Invalid revisions are reported and skipped. Deleting the file unmounts the
component and exits. Without a terminal, or with --script, each revision's
effects are printed as lines instead of opening the demo.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchScript, "script", false, "print effects instead of opening the interactive demo")
}

// fileProps is the on-disk form of counter.Props. Callbacks cannot be
// expressed in a file, so setValue is always bound to the host store.
type fileProps struct {
	Value int `mapstructure:"value"`
}

// watchUpdate is one settled change to the properties file.
type watchUpdate struct {
	props   fileProps
	err     error
	removed bool
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	initial, err := watch.Load[fileProps](path)
	if err != nil {
		return err
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if watchScript || !isTerminal(cmd) {
		return runWatchHeadless(cmd.Context(), cmd.OutOrStdout(), rt, path, initial)
	}
	return runWatchInteractive(rt, path, initial)
}

func runWatchInteractive(rt *runtime, path string, initial fileProps) error {
	sched := tui.NewScheduler()
	demo := counter.NewDemo(counter.DemoConfig{
		Initial:  initial.Value,
		SetValue: rt.cfg.Counter.SetValue,
		LogSize:  rt.cfg.TUI.EffectLogSize,
		Logger:   rt.logger,
		Options:  rt.hostedOptions(sched),
	})
	app := tui.New(demo, rt.appOptions(sched)...)

	w, err := watch.New(watch.Config[fileProps]{
		Path:     path,
		Debounce: rt.cfg.Watch.Debounce(),
		Logger:   rt.logger,
		OnChange: func(p fileProps) {
			demo.Store().Set(p.Value)
			app.Send(tuimsg.ErrMsg{})
			app.Send(tuimsg.PropsMsg[counter.Props]{Props: demo.Store().Props()})
		},
		OnError: func(err error) {
			app.Send(tuimsg.ErrMsg{Err: err})
		},
		OnRemove: func() {
			app.Send(tuimsg.UnmountMsg{Quit: true})
		},
	})
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()

	if _, err := app.Run(); err != nil {
		return fmt.Errorf("watch demo failed: %w", err)
	}
	return nil
}

// runWatchHeadless owns the component instance on the calling goroutine;
// the watcher hands revisions over through a channel.
func runWatchHeadless(ctx context.Context, out io.Writer, rt *runtime, path string, initial fileProps) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(ctx)

	updates := make(chan watchUpdate)
	deliver := func(u watchUpdate) {
		select {
		case updates <- u:
		case <-ctx.Done():
		}
	}
	w, err := watch.New(watch.Config[fileProps]{
		Path:     path,
		Debounce: rt.cfg.Watch.Debounce(),
		Logger:   rt.logger,
		OnChange: func(p fileProps) { deliver(watchUpdate{props: p}) },
		OnError:  func(err error) { deliver(watchUpdate{err: err}) },
		OnRemove: func() { deliver(watchUpdate{removed: true}) },
	})
	if err != nil {
		cancel()
		return err
	}
	// The watcher may be blocked in deliver; cancel before waiting on it.
	defer func() {
		cancel()
		w.Stop()
	}()

	store := counter.NewStore(initial.Value)
	log := counter.NewLog(rt.cfg.TUI.EffectLogSize)
	inst := counter.NewInstance(log, rt.logger, rt.opts...)

	seen := 0
	report := func(label string) error {
		var fresh []counter.Effect
		fresh, seen = log.Since(seen)
		return counter.WriteStep(out, label, fresh)
	}

	if err := inst.Mount(store.Props()); err != nil {
		return err
	}
	defer inst.Unmount()
	if err := report(fmt.Sprintf("mount value=%d", initial.Value)); err != nil {
		return err
	}
	w.Start()

	for {
		select {
		case <-ctx.Done():
			inst.Unmount()
			return report("unmount")

		case u := <-updates:
			switch {
			case u.removed:
				inst.Unmount()
				return report("file removed")
			case u.err != nil:
				if _, err := fmt.Fprintf(out, "%-22s%v\n", "rejected", u.err); err != nil {
					return err
				}
			default:
				store.Set(u.props.Value)
				if err := inst.Update(store.Props()); err != nil {
					return err
				}
				if err := report(fmt.Sprintf("update value=%d", u.props.Value)); err != nil {
					return err
				}
			}
		}
	}
}
