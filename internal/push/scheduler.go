package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/voraviaadmin/voravia/internal/model"
	"github.com/voraviaadmin/voravia/internal/reminder"
	"github.com/voraviaadmin/voravia/internal/score"
	"github.com/voraviaadmin/voravia/internal/store"
)

// Weekly digest goes out Sunday evening.
const (
	digestDay     = time.Sunday
	digestHour    = 18
	sentRetention = 30 * 24 * time.Hour
)

// Scheduler periodically checks for reminders that are due and sends the
// weekly score digest.
type Scheduler struct {
	mu        sync.RWMutex
	service   *Service
	push      *store.PushStore
	reminders *store.ReminderStore
	scans     *store.ScanStore
	members   *store.MemberStore
	logger    *slog.Logger
	interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewScheduler creates a notification scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, reminderStore *store.ReminderStore, scanStore *store.ScanStore, memberStore *store.MemberStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:   svc,
		push:      pushStore,
		reminders: reminderStore,
		scans:     scanStore,
		members:   memberStore,
		logger:    logger.With("component", "scheduler"),
		interval:  60 * time.Second,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	s.checkReminders(now)
	s.checkScoreDigest(now)

	// Prune once a day, on the midnight tick.
	if now.Hour() == 0 && now.Minute() == 0 {
		if err := s.push.PruneSent(now.Add(-sentRetention)); err != nil {
			s.logger.Warn("prune sent notifications", "error", err)
		}
	}
}

func (s *Scheduler) checkReminders(now time.Time) {
	enabled, err := s.reminders.ListEnabled()
	if err != nil {
		s.logger.Error("list enabled reminders", "error", err)
		return
	}

	for _, r := range enabled {
		rule, err := reminder.Parse(r.Rule)
		if err != nil {
			s.logger.Warn("skip reminder with bad rule", "reminder_id", r.ID, "rule", r.Rule, "error", err)
			continue
		}
		if !rule.DueAt(now) {
			continue
		}

		refID := fmt.Sprintf("reminder-%d-%s", r.ID, now.Format("2006-01-02T15:04"))
		sent, err := s.push.WasSent(model.NotifTypeReminder, refID)
		if err != nil {
			s.logger.Error("check sent", "error", err)
			continue
		}
		if sent {
			continue
		}

		payload := Payload{
			Kind:     KindReminder,
			Title:    "Voravia Reminder",
			Body:     r.Message,
			URL:      "/scan",
			Tag:      fmt.Sprintf("reminder-%d", r.ID),
			MemberID: r.MemberID,
		}
		s.sendToMember(r.MemberID, payload)

		if err := s.push.MarkSent(model.NotifTypeReminder, refID); err != nil {
			s.logger.Error("mark sent", "error", err)
		}
	}
}

// checkScoreDigest sends each member their average food score for the past
// week, once a week.
func (s *Scheduler) checkScoreDigest(now time.Time) {
	if now.Weekday() != digestDay || now.Hour() != digestHour || now.Minute() != 0 {
		return
	}

	refDate := now.Format("2006-01-02")
	members, err := s.members.List()
	if err != nil {
		s.logger.Error("list members for digest", "error", err)
		return
	}

	for _, m := range members {
		refID := fmt.Sprintf("digest-%s-%s", m.ID, refDate)
		sent, err := s.push.WasSent(model.NotifTypeScoreDigest, refID)
		if err != nil || sent {
			continue
		}

		scores, err := s.scans.RecentScores([]string{m.ID}, now.AddDate(0, 0, -7))
		if err != nil {
			s.logger.Error("recent scores for digest", "member_id", m.ID, "error", err)
			continue
		}
		if len(scores) == 0 {
			continue
		}

		avg := score.Aggregate(scores)
		payload := Payload{
			Kind:     KindDigest,
			Title:    "Your Week in Food",
			Body:     fmt.Sprintf("%s scanned %d items this week with an average score of %.0f", m.Name, len(scores), avg),
			URL:      "/scores",
			Tag:      "score-digest",
			MemberID: m.ID,
			Score:    int(avg + 0.5),
		}
		s.sendToMember(m.ID, payload)

		if err := s.push.MarkSent(model.NotifTypeScoreDigest, refID); err != nil {
			s.logger.Error("mark digest sent", "error", err)
		}
	}
}

func (s *Scheduler) sendToMember(memberID string, payload Payload) {
	subs, err := s.push.ListByMember(memberID)
	if err != nil {
		s.logger.Error("list subscriptions", "member_id", memberID, "error", err)
		return
	}

	for _, sub := range subs {
		if err := s.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(sub.Endpoint)
			} else {
				s.logger.Warn("send push", "member_id", memberID, "error", err)
			}
		}
	}
}
