package lsp

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/walteh/witls/pkg/lsp/protocol"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/fsnotify.v1"
)

// dirWatcher relints open documents when another file of their package
// changes on disk. Files the editor has open are skipped since the editor
// reports those itself.
type dirWatcher struct {
	server *Server
	fsw    *fsnotify.Watcher

	mu   sync.Mutex
	dirs map[string]bool

	done chan struct{}
}

func newDirWatcher(ctx context.Context, server *Server) (*dirWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &dirWatcher{
		server: server,
		fsw:    fsw,
		dirs:   make(map[string]bool),
		done:   make(chan struct{}),
	}

	go w.loop(context.WithoutCancel(ctx))

	return w, nil
}

func (w *dirWatcher) watch(ctx context.Context, dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dirs[dir] {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("dir", dir).Msg("unable to watch package directory")
		return
	}
	w.dirs[dir] = true
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("watching package directory")
}

func (w *dirWatcher) unwatch(ctx context.Context, dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[dir] {
		return
	}
	delete(w.dirs, dir)
	if err := w.fsw.Remove(dir); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("dir", dir).Msg("unable to stop watching package directory")
	}
}

func (w *dirWatcher) watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	dirs := make([]string, 0, len(w.dirs))
	for dir := range w.dirs {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

func (w *dirWatcher) loop(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	defer close(w.done)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func (w *dirWatcher) handle(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !w.server.config.Matches(filepath.Base(ev.Name)) {
		return
	}

	uri := protocol.URIFromPath(ev.Name)
	if _, open := w.server.documents.GetNoFallback(uri); open {
		return
	}

	docs := w.server.documents.InDir(filepath.Dir(ev.Name))
	if len(docs) == 0 {
		return
	}

	zerolog.Ctx(ctx).Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Int("open_documents", len(docs)).Msg("package file changed on disk")

	// one run covers the whole package
	w.server.lint(ctx, docs[0].URI)
}

// Close stops watching every directory and waits for the event loop to end.
func (w *dirWatcher) Close() error {
	w.mu.Lock()
	var result *multierror.Error
	for dir := range w.dirs {
		if err := w.fsw.Remove(dir); err != nil {
			result = multierror.Append(result, errors.Errorf("unwatching %s: %w", dir, err))
		}
	}
	w.dirs = make(map[string]bool)
	w.mu.Unlock()

	if err := w.fsw.Close(); err != nil {
		result = multierror.Append(result, errors.Errorf("closing watcher: %w", err))
	}
	<-w.done

	return result.ErrorOrNil()
}
