package bundle

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/1Zgp/sailfish-barcode/ts"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DebounceDelay is how long to wait for more events on a file before loading it again.
var DebounceDelay = 200 * time.Millisecond

// Watch reloads catalogs in the bundle directory when their files change, until ctx is done.
// It returns once the watcher is set up.
func (b *Bundle) Watch(ctx context.Context) error {
	if b.dir == "" {
		return errors.New("bundle was not loaded from a directory")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(b.dir); err != nil {
		w.Close()
		return err
	}

	go b.watch(ctx, w)

	log.Info().Str("dir", b.dir).Msg("watching catalogs")
	return nil
}

func (b *Bundle) watch(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
	)
	schedule := func(file string, op fsnotify.Op) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[file]; ok {
			t.Stop()
		}
		pending[file] = time.AfterFunc(DebounceDelay, func() {
			mu.Lock()
			delete(pending, file)
			mu.Unlock()
			b.reload(file, op)
		})
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, t := range pending {
				t.Stop()
			}
			mu.Unlock()
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Ext(ev.Name) != ts.Extension {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				schedule(ev.Name, fsnotify.Remove)
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				schedule(ev.Name, fsnotify.Write)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Str("dir", b.dir).Msg("catalog watcher")
		}
	}
}

// reload loads file again, or drops the catalog that came from it when it was removed.
func (b *Bundle) reload(file string, op fsnotify.Op) {
	if op == fsnotify.Remove {
		if code, ok := b.codeForFile(file); ok {
			b.Remove(code)
			log.Info().Str("file", file).Str("language", code).Msg("catalog removed")
		}
		b.notify(file, nil)
		return
	}

	c, err := ts.NewFromFile(file)
	if err == nil {
		err = b.add(c, file)
	}
	if err != nil {
		log.Error().Err(err).Str("file", file).Msg("reloading catalog")
		b.notify(file, err)
		return
	}
	b.rebuild()

	log.Info().Str("file", file).Str("language", c.Language).Msg("catalog reloaded")
	b.notify(file, nil)
}

func (b *Bundle) notify(file string, err error) {
	if b.OnReload != nil {
		b.OnReload(file, err)
	}
}

func (b *Bundle) codeForFile(file string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for code, e := range b.entries {
		if e.file == file {
			return code, true
		}
	}
	return "", false
}
