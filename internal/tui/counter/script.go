package counter

import (
	"fmt"
	"io"

	"github.com/Iron-Ham/refract/internal/errors"
	"github.com/Iron-Ham/refract/internal/logging"
	"github.com/Iron-Ham/refract/internal/refract"
)

// Enhance wraps View with the counter's effects and handlers. Handled
// effects are appended to log; logger may be nil.
func Enhance(log *Log, logger *logging.Logger, opts ...refract.Option) *refract.Enhanced[Props, Effect] {
	opts = append([]refract.Option{refract.WithName("counter"), refract.WithLogger(logger)}, opts...)
	return refract.WithEffects(Handlers(log, logger), Effects, opts...)(View)
}

// NewInstance returns an unmounted counter instance.
func NewInstance(log *Log, logger *logging.Logger, opts ...refract.Option) *refract.Instance[Props, Effect] {
	return Enhance(log, logger, opts...).New()
}

// WriteStep writes one script line: the padded label followed by the
// effects it produced.
func WriteStep(w io.Writer, label string, effects []Effect) error {
	if _, err := fmt.Fprintf(w, "%-22s", label); err != nil {
		return err
	}
	if len(effects) == 0 {
		_, err := fmt.Fprintln(w, "(no effects)")
		return err
	}
	for i, e := range effects {
		sep := ", "
		if i == len(effects)-1 {
			sep = "\n"
		}
		if _, err := fmt.Fprint(w, e.String(), sep); err != nil {
			return err
		}
	}
	return nil
}

// ScriptConfig configures RunScript.
type ScriptConfig struct {
	Initial  int
	SetValue int
	Logger   *logging.Logger
	Options  []refract.Option
}

// RunScript drives the counter without a terminal: mount, increment,
// repeat the same props, call setValue, unmount, then push once more after
// unmount. Each step and the effects it produced are written to w. It
// returns every effect in order.
func RunScript(w io.Writer, cfg ScriptConfig) ([]Effect, error) {
	store := NewStore(cfg.Initial)
	log := NewLog(64)
	inst := NewInstance(log, cfg.Logger, cfg.Options...)

	seen := 0
	step := func(label string, fn func() error) error {
		if err := fn(); err != nil {
			return errors.Wrapf(err, "step %q", label)
		}
		var fresh []Effect
		fresh, seen = log.Since(seen)
		return WriteStep(w, label, fresh)
	}

	steps := []struct {
		label string
		fn    func() error
	}{
		{fmt.Sprintf("mount value=%d", cfg.Initial), func() error {
			return inst.Mount(store.Props())
		}},
		{fmt.Sprintf("update value=%d", cfg.Initial+1), func() error {
			store.Add(1)
			return inst.Update(store.Props())
		}},
		{fmt.Sprintf("update value=%d", cfg.Initial+1), func() error {
			return inst.Update(store.Props())
		}},
		{fmt.Sprintf("setValue(%d)", cfg.SetValue), func() error {
			inst.Props().SetValue(cfg.SetValue)
			return nil
		}},
		{"unmount", func() error {
			inst.Unmount()
			return nil
		}},
		{"update after unmount", func() error {
			store.Add(1)
			return inst.Update(store.Props())
		}},
	}

	for _, s := range steps {
		if err := step(s.label, s.fn); err != nil {
			return log.Entries(), err
		}
	}
	return log.Entries(), nil
}
