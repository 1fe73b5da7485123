package ronin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/roninhq/ronin/internal/core/config"
	"github.com/roninhq/ronin/internal/core/mission"
)

// InboxBridge watches the instance inbox directory and turns dropped files
// into queued missions. Each non-empty line of a drop file becomes one
// mission. Files whose name starts with "urgent" queue at the top. Drops
// are deleted after ingestion.
type InboxBridge struct {
	queue       *QueueService
	cfg         *config.Config
	log         zerolog.Logger
	debounceDur time.Duration
}

// NewInboxBridge creates a new InboxBridge.
func NewInboxBridge(queue *QueueService, cfg *config.Config, log zerolog.Logger) *InboxBridge {
	return &InboxBridge{
		queue:       queue,
		cfg:         cfg,
		log:         log.With().Str("component", "inbox-bridge").Logger(),
		debounceDur: 200 * time.Millisecond,
	}
}

// Run ingests any drops already sitting in the inbox, then watches for new
// ones until the context is canceled.
func (b *InboxBridge) Run(ctx context.Context) error {
	dir := b.cfg.InboxDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}

	if err := b.sweep(ctx, dir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create inbox watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch inbox dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isDropFile(event.Name) {
				continue
			}

			// Let the writer finish before reading the drop.
			time.Sleep(b.debounceDur)
			if err := b.ingest(ctx, event.Name); err != nil {
				b.log.Error().Err(err).Str("path", event.Name).Msg("ingest drop")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.log.Error().Err(err).Msg("inbox watcher error")
		}
	}
}

// sweep ingests drops that arrived while the bridge was not running.
func (b *InboxBridge) sweep(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read inbox dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !isDropFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := b.ingest(ctx, path); err != nil {
			b.log.Error().Err(err).Str("path", path).Msg("ingest drop")
		}
	}
	return nil
}

// ingest reads a drop file, queues one mission per non-empty line, and
// removes the file. Missions are tagged with the drop's project when the
// line carries no tag of its own and the file path maps to a known project.
func (b *InboxBridge) ingest(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read drop: %w", err)
	}

	urgent := strings.HasPrefix(strings.ToLower(filepath.Base(path)), "urgent")
	project, _ := b.cfg.ProjectFor(path)

	queued := 0
	for _, line := range strings.Split(string(data), "\n") {
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if tagged, _ := mission.ParseProject(text); project != "" && tagged == "" {
			text = text + " [project:" + project + "]"
		}
		if _, err := b.queue.Add(ctx, text, urgent); err != nil {
			return err
		}
		queued++
	}

	b.log.Info().Str("path", path).Int("missions", queued).Msg("drop ingested")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove drop: %w", err)
	}
	return nil
}

// isDropFile reports whether a file name looks like a mission drop.
func isDropFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".txt":
		return true
	default:
		return false
	}
}
