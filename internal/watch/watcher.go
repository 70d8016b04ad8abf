// Package watch follows a YAML properties file on disk and delivers each
// decoded revision to a callback, so a mounted component can be driven by
// editing a file.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/sourcegraph/conc"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/refract/internal/errors"
	"github.com/Iron-Ham/refract/internal/logging"
)

// DefaultDebounce is used when Config.Debounce is zero. Editors tend to
// produce several events for a single save.
const DefaultDebounce = 50 * time.Millisecond

// Config configures a Watcher.
type Config[T any] struct {
	// Path is the properties file. It must exist when New is called.
	Path     string
	Debounce time.Duration
	Logger   *logging.Logger

	// OnChange receives every successfully decoded revision.
	OnChange func(T)
	// OnError receives read and decode failures. The watcher keeps running.
	OnError func(error)
	// OnRemove is called when the file disappears and does not come back
	// within the debounce window.
	OnRemove func()
}

// Watcher watches a single properties file.
type Watcher[T any] struct {
	cfg     Config[T]
	path    string
	watcher *fsnotify.Watcher
	logger  *logging.Logger

	mu       sync.Mutex
	revision int

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       conc.WaitGroup
}

// New creates a watcher for cfg.Path. Call Start to begin delivering
// revisions.
func New[T any](cfg Config[T]) (*Watcher[T], error) {
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", cfg.Path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewValidationError("properties file does not exist").WithField("path").WithValue(cfg.Path).WithCause(err)
	}
	if info.IsDir() {
		return nil, errors.NewValidationError("properties path is a directory").WithField("path").WithValue(cfg.Path)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory rather than the file so that atomic saves, which
	// replace the file, keep being observed.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, errors.Wrapf(err, "watch %s", filepath.Dir(path))
	}

	return &Watcher[T]{
		cfg:     cfg,
		path:    path,
		watcher: watcher,
		logger:  logger.With("path", path),
		stopCh:  make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher[T]) Path() string {
	return w.path
}

// Revision returns how many revisions have been delivered.
func (w *Watcher[T]) Revision() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.revision
}

// Start begins watching for changes.
func (w *Watcher[T]) Start() {
	w.wg.Go(w.watchLoop)
}

// Stop stops the watcher and waits for the loop to exit. It is safe to call
// more than once.
func (w *Watcher[T]) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
	w.wg.Wait()
}

func (w *Watcher[T]) watchLoop() {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	pending := false
	for {
		select {
		case <-w.stopCh:
			debounceTimer.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			debounceTimer.Reset(w.cfg.Debounce)

		case <-debounceTimer.C:
			if pending {
				pending = false
				w.settle()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// settle runs once a burst of events has quieted down and inspects the
// file's final state.
func (w *Watcher[T]) settle() {
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		w.logger.Info("properties file removed")
		if w.cfg.OnRemove != nil {
			w.cfg.OnRemove()
		}
		return
	}

	props, err := Load[T](w.path)
	if err != nil {
		w.logger.Warn("properties file rejected", "error", err)
		if w.cfg.OnError != nil {
			w.cfg.OnError(err)
		}
		return
	}

	w.mu.Lock()
	w.revision++
	rev := w.revision
	w.mu.Unlock()
	w.logger.Debug("properties file changed", "revision", rev)
	if w.cfg.OnChange != nil {
		w.cfg.OnChange(props)
	}
}

// Load reads path as YAML and decodes it into T using mapstructure tags.
// Unknown keys are rejected. An empty file decodes to the zero value.
func Load[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		return out, errors.Wrapf(err, "read %s", path)
	}
	return Decode[T](data)
}

// Decode decodes YAML bytes into T. Scalars are converted loosely, so
// `value: "3"` fills an int field.
func Decode[T any](data []byte) (T, error) {
	var out T
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return out, errors.NewValidationError("invalid YAML").WithCause(err)
	}
	if raw == nil {
		return out, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(raw); err != nil {
		return out, errors.NewValidationError("invalid properties").WithCause(err)
	}
	return out, nil
}
