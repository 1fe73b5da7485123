// Package ronin wires the mission queue core into the services the
// commands and TUI consume.
package ronin

import (
	"github.com/rs/zerolog"

	"github.com/roninhq/ronin/internal/core/config"
	"github.com/roninhq/ronin/internal/core/eventbus"
	"github.com/roninhq/ronin/internal/store/markdown"
	"github.com/roninhq/ronin/pkg/executil"
)

// App is the central entry point for all ronin operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Queue  *QueueService
	Runner *Runner
	Inbox  *InboxBridge

	Store  *markdown.Store
	Bus    *eventbus.EventBus
	Config *config.Config
}

// NewApp constructs an App from a validated configuration.
func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	bus := eventbus.New()
	eventbus.RegisterDebugLogger(bus, log)
	store := markdown.New(cfg.MissionsFile(), log)
	queue := NewQueueService(store, bus, log)

	return &App{
		Queue:  queue,
		Runner: NewRunner(queue, cfg, executil.OSShell{}, log),
		Inbox:  NewInboxBridge(queue, cfg, log),
		Store:  store,
		Bus:    bus,
		Config: cfg,
	}
}

// Close releases background resources.
func (a *App) Close() {
	a.Bus.Close()
}
