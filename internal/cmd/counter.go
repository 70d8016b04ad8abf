package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Iron-Ham/refract/internal/tui"
	"github.com/Iron-Ham/refract/internal/tui/counter"
)

var counterScript bool

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Run the counter demo",
	Long: `Run the counter demo component.

In a terminal this opens the interactive demo: +/- change the value, s sets
it through the component's setValue callback and q unmounts it. Every
effect the component produces is shown in the log below the counter.

When stdout is not a terminal, or with --script, a fixed sequence of
mount, updates, setValue and unmount is run and each step's effects are
printed.`,
	Args: cobra.NoArgs,
	RunE: runCounter,
}

func init() {
	rootCmd.AddCommand(counterCmd)
	counterCmd.Flags().BoolVar(&counterScript, "script", false, "run the scripted sequence instead of the interactive demo")
	counterCmd.Flags().Int("initial", 0, "initial counter value")
	counterCmd.Flags().Int("set-value", 10, "value passed to setValue")
	_ = viper.BindPFlag("counter.initial_value", counterCmd.Flags().Lookup("initial"))
	_ = viper.BindPFlag("counter.set_value", counterCmd.Flags().Lookup("set-value"))
}

func runCounter(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg.Counter
	if counterScript || !isTerminal(cmd) {
		_, err := counter.RunScript(cmd.OutOrStdout(), counter.ScriptConfig{
			Initial:  cfg.InitialValue,
			SetValue: cfg.SetValue,
			Logger:   rt.logger,
			Options:  rt.opts,
		})
		return err
	}

	sched := tui.NewScheduler()
	demo := counter.NewDemo(counter.DemoConfig{
		Initial:  cfg.InitialValue,
		SetValue: cfg.SetValue,
		LogSize:  rt.cfg.TUI.EffectLogSize,
		Logger:   rt.logger,
		Options:  rt.hostedOptions(sched),
	})
	if _, err := tui.New(demo, rt.appOptions(sched)...).Run(); err != nil {
		return fmt.Errorf("counter demo failed: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d effects handled, final value %d\n", demo.Log().Total(), demo.Store().Value())
	return nil
}

// isTerminal reports whether the command writes to an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
