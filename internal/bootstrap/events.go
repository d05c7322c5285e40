package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spinworks/draw10/internal/config"
	"github.com/spinworks/draw10/internal/event"
)

// InitializeEventSystem creates and configures the event bus and resilient publisher.
// It creates the dead-letter directory and wires the dead-letter writer into the
// publisher so an exhausted retry loop lands in the on-disk queue instead of
// being dropped.
// Returns the event bus, resilient publisher, dead-letter writer (caller must
// close), and any error encountered.
func InitializeEventSystem(cfg *config.Config) (event.Bus, *event.ResilientPublisher, *event.DeadLetterWriter, error) {
	eventBus := event.NewMemoryBus()

	if err := os.MkdirAll(filepath.Dir(cfg.DeadLetterPath), DirPermission); err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", LogMsgFailedCreateDeadLetterDir, err)
	}

	deadLetter, err := event.NewDeadLetterWriter(cfg.DeadLetterPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", LogMsgFailedCreateDeadLetter, err)
	}

	publisher := event.NewResilientPublisher(eventBus, event.ResilientConfig{
		DeadLetter: deadLetter,
	})

	slog.Info(LogMsgEventSystemInitialized, "deadletter_path", cfg.DeadLetterPath)

	return eventBus, publisher, deadLetter, nil
}
