// Package watch turns a folder that a scanner drops pages into into a stream
// of page sets. A set is emitted once no new page has arrived for the quiet
// period, with paths sorted by name so scan order becomes page order.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/contract-sentinel/constants"
)

type Config struct {
	Dir         string
	Quiet       time.Duration // emit after this long without new pages
	InitialScan bool          // treat pages already in Dir as the first set
}

const DefaultQuiet = 2 * time.Second

// Start watches cfg.Dir until ctx is done. Both channels close on return.
func Start(ctx context.Context, cfg Config, logger *slog.Logger) (<-chan []string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, nil, errors.New("watch: no directory")
	}
	if cfg.Quiet <= 0 {
		cfg.Quiet = DefaultQuiet
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("watch.create_failed", "error", err)
		return nil, nil, err
	}
	if err := w.Add(cfg.Dir); err != nil {
		_ = w.Close()
		logger.Error("watch.add_failed", "dir", cfg.Dir, "error", err)
		return nil, nil, err
	}

	pending := map[string]struct{}{}
	if cfg.InitialScan {
		entries, err := os.ReadDir(cfg.Dir)
		if err != nil {
			_ = w.Close()
			return nil, nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && constants.IsAllowedExt(filepath.Ext(e.Name())) {
				pending[filepath.Join(cfg.Dir, e.Name())] = struct{}{}
			}
		}
	}

	setCh := make(chan []string, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(setCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("watch.close_failed", "error", err)
			}
		}()

		timer := time.NewTimer(cfg.Quiet)
		if len(pending) == 0 {
			timer.Stop()
		}

		flush := func() {
			if len(pending) == 0 {
				return
			}
			set := make([]string, 0, len(pending))
			for p := range pending {
				set = append(set, p)
			}
			sort.Strings(set)
			clear(pending)
			logger.Info("watch.set_ready", "pages", len(set))
			select {
			case setCh <- set:
			case <-ctx.Done():
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if !constants.IsAllowedExt(filepath.Ext(e.Name)) {
					continue
				}
				switch {
				case e.Op.Has(fsnotify.Remove), e.Op.Has(fsnotify.Rename):
					delete(pending, e.Name)
				case e.Op.Has(fsnotify.Create), e.Op.Has(fsnotify.Write):
					pending[e.Name] = struct{}{}
				default:
					continue
				}
				timer.Reset(cfg.Quiet)
			case <-timer.C:
				flush()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return setCh, errCh, nil
}
