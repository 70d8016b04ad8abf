package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/refract/internal/errors"
)

type fileProps struct {
	Value int    `mapstructure:"value"`
	Label string `mapstructure:"label"`
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// recorder collects watcher callbacks.
type recorder struct {
	mu      sync.Mutex
	values  []fileProps
	errs    []error
	removed int
}

func (r *recorder) config(path string) Config[fileProps] {
	return Config[fileProps]{
		Path:     path,
		Debounce: 20 * time.Millisecond,
		OnChange: func(p fileProps) {
			r.mu.Lock()
			r.values = append(r.values, p)
			r.mu.Unlock()
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		},
		OnRemove: func() {
			r.mu.Lock()
			r.removed++
			r.mu.Unlock()
		},
	}
}

func (r *recorder) waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		ok := cond()
		r.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for watcher callback")
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    fileProps
		wantErr bool
	}{
		{name: "full", input: "value: 3\nlabel: hi\n", want: fileProps{Value: 3, Label: "hi"}},
		{name: "weakly typed", input: "value: \"7\"\n", want: fileProps{Value: 7}},
		{name: "empty", input: "", want: fileProps{}},
		{name: "unknown key", input: "value: 1\ncolour: red\n", wantErr: true},
		{name: "bad yaml", input: "value: [1\n", wantErr: true},
		{name: "bad type", input: "value: lots\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[fileProps]([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode(%q) expected error, got %+v", tt.input, got)
				}
				if !errors.Is(err, errors.ErrInvalidInput) {
					t.Errorf("Decode error %v should match ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load[fileProps](filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestNew_Validation(t *testing.T) {
	dir := t.TempDir()

	if _, err := New(Config[fileProps]{Path: filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Error("Expected error for missing file")
	} else if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Error %q should mention the missing file", err.Error())
	}

	if _, err := New(Config[fileProps]{Path: dir}); err == nil {
		t.Error("Expected error for directory path")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "props.yaml")
	writeFile(t, path, "value: 1\n")

	w, err := New(Config[fileProps]{Path: path})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	w.Start()
	w.Stop()
	w.Stop()
}

func TestWatcher_DeliversChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "props.yaml")
	writeFile(t, path, "value: 1\n")

	r := &recorder{}
	w, err := New(r.config(path))
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	w.Start()
	defer w.Stop()

	writeFile(t, path, "value: 2\n")
	r.waitFor(t, func() bool { return len(r.values) == 1 })

	r.mu.Lock()
	got := r.values[0]
	r.mu.Unlock()
	if got.Value != 2 {
		t.Errorf("Value = %d, want 2", got.Value)
	}
	if w.Revision() != 1 {
		t.Errorf("Revision() = %d, want 1", w.Revision())
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "props.yaml")
	writeFile(t, path, "value: 1\n")

	r := &recorder{}
	w, err := New(r.config(path))
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	w.Start()
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "other.yaml"), "value: 9\n")
	time.Sleep(100 * time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) != 0 {
		t.Errorf("Expected no revisions for sibling writes, got %+v", r.values)
	}
}

func TestWatcher_ReportsDecodeErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "props.yaml")
	writeFile(t, path, "value: 1\n")

	r := &recorder{}
	w, err := New(r.config(path))
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	w.Start()
	defer w.Stop()

	writeFile(t, path, "value: nope\n")
	r.waitFor(t, func() bool { return len(r.errs) == 1 })

	// A later valid revision is still delivered.
	writeFile(t, path, "value: 5\n")
	r.waitFor(t, func() bool { return len(r.values) == 1 && r.values[0].Value == 5 })
}

func TestWatcher_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "props.yaml")
	writeFile(t, path, "value: 1\n")

	r := &recorder{}
	w, err := New(r.config(path))
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	w.Start()
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}
	r.waitFor(t, func() bool { return r.removed == 1 })
}
