// Package intake watches drop directories and submits new files as
// documents through the orchestrator.
package intake

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/shori/internal/models"
)

const defaultDebounce = 400 * time.Millisecond

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

// Submitter is the orchestration entry point the watcher feeds into.
type Submitter interface {
	Submit(ctx context.Context, input *models.DocumentInput) (*models.Document, error)
}

// Watcher submits files dropped into the configured directories. Submission
// failures are logged, never fatal; the watcher keeps running.
type Watcher struct {
	dirs      []string
	submitter Submitter
	logger    *zap.Logger
	debounce  time.Duration

	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	watcher     *fsnotify.Watcher
}

// NewWatcher creates a watcher over dirs. It does nothing until Start.
func NewWatcher(dirs []string, submitter Submitter, logger *zap.Logger) *Watcher {
	return &Watcher{
		dirs:        dirs,
		submitter:   submitter,
		logger:      logger,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
	}
}

// Start begins watching. It runs until ctx is cancelled. Starting with no
// directories is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	if len(w.dirs) == 0 {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher
	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return err
		}
		w.logger.Info("watching intake directory", zap.String("dir", dir))
	}
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.scheduleSubmit(ctx, event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("intake watch error", zap.Error(err))
		}
	}
}

// scheduleSubmit debounces rapid write events so a file is submitted once
// after it settles.
func (w *Watcher) scheduleSubmit(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.debounceMap[path]; ok {
		timer.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.submitFile(ctx, path)
	})
}

func (w *Watcher) submitFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("failed to read intake file", zap.String("path", path), zap.Error(err))
		return
	}

	input := InputForFile(filepath.Base(path), data)
	doc, err := w.submitter.Submit(ctx, input)
	if err != nil {
		w.logger.Warn("failed to submit intake file", zap.String("path", path), zap.Error(err))
		return
	}
	w.logger.Info("intake file submitted",
		zap.String("path", path), zap.String("id", doc.ID), zap.String("type", string(doc.Type)))
}

// InputForFile maps a file to a creation payload: image extensions become
// base64-encoded image documents, everything else is submitted as text.
func InputForFile(name string, data []byte) *models.DocumentInput {
	ext := strings.ToLower(filepath.Ext(name))
	if imageExtensions[ext] {
		return &models.DocumentInput{
			Name:    name,
			Type:    models.TypeImage,
			Content: base64.StdEncoding.EncodeToString(data),
		}
	}
	return &models.DocumentInput{
		Name:    name,
		Type:    models.TypeText,
		Content: string(data),
	}
}
