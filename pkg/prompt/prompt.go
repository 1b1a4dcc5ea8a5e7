// Package prompt supplies the assistant's system prompt.
//
// The built-in prompt (persona, consultation details and the lead capture
// protocol) is embedded in the binary. Deployments can point
// assistant.system_prompt_file at their own text; with assistant.watch_prompt
// enabled the file is reloaded when it changes on disk.
package prompt

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

//go:embed templates/*.txt
var templates embed.FS

// ReadyLine closes every generated prompt.
const ReadyLine = "Okay, I'm ready to chat!"

// Source returns the current system prompt.
type Source interface {
	SystemPrompt() string
}

// Static is a fixed prompt.
type Static string

// SystemPrompt implements Source.
func (s Static) SystemPrompt() string { return string(s) }

// Default assembles the embedded prompt.
func Default() string {
	sections := []string{"persona.txt", "consultation.txt", "protocol.txt"}
	parts := make([]string, 0, len(sections)+1)
	for _, name := range sections {
		data, err := templates.ReadFile("templates/" + name)
		if err != nil {
			// Embedded at build time; a missing file is a packaging bug.
			panic(fmt.Sprintf("prompt: missing embedded section %s: %v", name, err))
		}
		parts = append(parts, strings.TrimSpace(string(data)))
	}
	parts = append(parts, ReadyLine)
	return strings.Join(parts, "\n\n")
}

// FileSource serves a prompt read from disk and can reload it.
type FileSource struct {
	path   string
	logger *slog.Logger

	mu   sync.RWMutex
	text string
}

// NewFileSource loads path. The file must exist and be non-empty.
func NewFileSource(path string, logger *slog.Logger) (*FileSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fs := &FileSource{path: path, logger: logger}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

// SystemPrompt implements Source.
func (f *FileSource) SystemPrompt() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.text
}

// Path returns the watched file.
func (f *FileSource) Path() string {
	return f.path
}

// Reload re-reads the file. On error the previous prompt stays active.
func (f *FileSource) Reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("failed to read system prompt %q: %w", f.path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return fmt.Errorf("system prompt %q is empty", f.path)
	}

	f.mu.Lock()
	f.text = text
	f.mu.Unlock()

	f.logger.Info("system prompt loaded", "path", f.path, "bytes", len(text))
	return nil
}

// Watch reloads the prompt whenever the file changes. It blocks until ctx
// is cancelled.
func (f *FileSource) Watch(ctx context.Context) error {
	w, err := NewWatcher(&WatcherConfig{Path: f.path}, f.logger)
	if err != nil {
		return err
	}
	defer w.Stop()
	return w.Watch(ctx, f.Reload)
}

// Load picks a source for the configured file. An empty path yields the
// embedded default.
func Load(path string, logger *slog.Logger) (Source, error) {
	if strings.TrimSpace(path) == "" {
		return Static(Default()), nil
	}
	return NewFileSource(path, logger)
}
