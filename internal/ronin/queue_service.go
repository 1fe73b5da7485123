package ronin

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/roninhq/ronin/internal/core/eventbus"
	"github.com/roninhq/ronin/internal/core/mission"
	"github.com/roninhq/ronin/internal/store/markdown"
)

// QueueService wraps the mission document store with lifecycle operations
// and event publishing. All mutations go through the store's locked
// read-modify-write cycle, so concurrent producers and consumers never lose
// entries.
type QueueService struct {
	store *markdown.Store
	bus   *eventbus.EventBus
	log   zerolog.Logger
	now   func() time.Time
}

// NewQueueService creates a new QueueService.
func NewQueueService(store *markdown.Store, bus *eventbus.EventBus, log zerolog.Logger) *QueueService {
	return &QueueService{
		store: store,
		bus:   bus,
		log:   log.With().Str("component", "queue-service").Logger(),
		now:   time.Now,
	}
}

// Add inserts a mission into the Pending section. Urgent missions go to the
// top of the queue. The returned entry reflects the line as written,
// including its queued stamp.
func (s *QueueService) Add(ctx context.Context, text string, urgent bool) (mission.Entry, error) {
	var line string
	err := s.store.Update(ctx, func(doc *mission.Document) error {
		line = mission.Insert(doc, text, urgent, s.now())
		return nil
	})
	if err != nil {
		return mission.Entry{}, fmt.Errorf("add mission: %w", err)
	}
	if line == "" {
		return mission.Entry{}, nil
	}

	entry := mission.ParseEntry(line)
	s.log.Info().Str("mission", entry.Text).Bool("urgent", urgent).Msg("mission queued")
	s.bus.PublishMissionQueued(eventbus.MissionQueuedPayload{Entry: entry, Urgent: urgent})
	return entry, nil
}

// Next returns the first pending mission, optionally filtered by project
// tag. It does not mutate the document.
func (s *QueueService) Next(ctx context.Context, project string) (mission.Entry, bool, error) {
	doc, err := s.store.Snapshot()
	if err != nil {
		return mission.Entry{}, false, fmt.Errorf("read missions: %w", err)
	}
	entry, ok := mission.NextPending(doc, project)
	return entry, ok, nil
}

// Start moves the first pending mission matching the given text to In
// Progress. Returns false without error when nothing matches.
func (s *QueueService) Start(ctx context.Context, match string) (bool, error) {
	return s.transition(ctx, match, mission.Start, mission.SectionInProgress, func(e mission.Entry) {
		s.bus.PublishMissionStarted(eventbus.MissionStartedPayload{Entry: e})
	})
}

// Complete moves the first in-progress mission matching the given text to
// Done with a completion stamp. Checklist sub-items are struck in place and
// the whole block moves only once every sub-item is done.
func (s *QueueService) Complete(ctx context.Context, match string) (bool, error) {
	return s.transition(ctx, match, mission.Complete, mission.SectionDone, func(e mission.Entry) {
		s.bus.PublishMissionCompleted(eventbus.MissionCompletedPayload{Entry: e})
	})
}

// Fail moves the first in-progress mission matching the given text to
// Failed with a failure stamp.
func (s *QueueService) Fail(ctx context.Context, match string) (bool, error) {
	return s.transition(ctx, match, mission.Fail, mission.SectionFailed, func(e mission.Entry) {
		s.bus.PublishMissionFailed(eventbus.MissionFailedPayload{Entry: e})
	})
}

func (s *QueueService) transition(
	ctx context.Context,
	match string,
	op func(*mission.Document, string, time.Time) bool,
	dest mission.SectionKind,
	publish func(mission.Entry),
) (bool, error) {
	var (
		moved bool
		entry mission.Entry
	)
	err := s.store.Update(ctx, func(doc *mission.Document) error {
		moved = op(doc, match, s.now())
		if moved {
			entry = s.findEntry(doc, dest, match)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("update mission: %w", err)
	}
	if !moved {
		s.log.Debug().Str("match", match).Msg("no mission matched")
		return false, nil
	}

	s.log.Info().Str("mission", entry.Text).Str("section", dest.String()).Msg("mission moved")
	publish(entry)
	return true, nil
}

// findEntry locates the moved line in its destination section. Checklist
// completions may leave the line struck in place rather than moved, in which
// case the match itself still identifies the mission.
func (s *QueueService) findEntry(doc *mission.Document, dest mission.SectionKind, match string) mission.Entry {
	if sec := doc.Section(dest); sec != nil {
		for _, line := range sec.Lines {
			if mission.Matches(line, match) {
				return mission.ParseEntry(line)
			}
		}
	}
	return mission.Entry{Text: match}
}

// Recover sweeps crash-interrupted missions from In Progress back to
// Pending, stripping started stamps. Returns how many entries moved.
func (s *QueueService) Recover(ctx context.Context) (int, error) {
	var count int
	err := s.store.Update(ctx, func(doc *mission.Document) error {
		count = mission.Recover(doc)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("recover missions: %w", err)
	}
	if count > 0 {
		s.log.Info().Int("count", count).Msg("recovered interrupted missions")
		s.bus.PublishMissionsRecovered(eventbus.MissionsRecoveredPayload{Count: count})
	}
	return count, nil
}

// Entries returns all display entries grouped by section, in document order.
func (s *QueueService) Entries(ctx context.Context) (map[mission.SectionKind][]mission.Entry, error) {
	doc, err := s.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("read missions: %w", err)
	}

	out := make(map[mission.SectionKind][]mission.Entry, len(doc.Sections))
	for _, sec := range doc.Sections {
		if sec.Kind == mission.SectionUnknown {
			continue
		}
		out[sec.Kind] = sec.Entries()
	}
	return out, nil
}
