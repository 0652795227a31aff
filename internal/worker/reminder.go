package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/email"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

// ReminderWorker sends a daily journaling reminder to every user who has
// notifications enabled and no entry dated today. It fires once per day
// at the configured UTC hour.
type ReminderWorker struct {
	userRepo  *repository.UserRepository
	entryRepo *repository.EntryRepository
	mailer    *email.Client
	hourUTC   int
	log       zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReminderWorker(userRepo *repository.UserRepository, entryRepo *repository.EntryRepository, mailer *email.Client, hourUTC int, log zerolog.Logger) *ReminderWorker {
	if hourUTC < 0 || hourUTC > 23 {
		hourUTC = 18
	}
	return &ReminderWorker{
		userRepo:  userRepo,
		entryRepo: entryRepo,
		mailer:    mailer,
		hourUTC:   hourUTC,
		log:       log,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	if w.cancel != nil {
		return
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		for {
			timer := time.NewTimer(time.Until(w.nextRun(time.Now().UTC())))
			select {
			case <-workerCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
				w.sendReminders(workerCtx)
			}
		}
	}()
}

func (w *ReminderWorker) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), w.hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (w *ReminderWorker) sendReminders(ctx context.Context) {
	if !w.mailer.Configured() {
		return
	}

	users, err := w.userRepo.ListAll()
	if err != nil {
		w.log.Error().Err(err).Msg("reminder list users failed")
		return
	}

	today := time.Now().UTC().Format("2006-01-02")
	sent := 0
	for _, user := range users {
		if ctx.Err() != nil {
			return
		}
		if !user.NotificationsEnabled || user.Email == "" {
			continue
		}

		entry, err := w.entryRepo.GetByUserIDAndDate(user.ID, today)
		if err != nil {
			w.log.Error().Err(err).Uint("user_id", user.ID).Msg("reminder check entry failed")
			continue
		}
		if entry != nil {
			continue
		}

		if err := w.mailer.SendReminder(ctx, user.Email, user.Name); err != nil {
			w.log.Error().Err(err).Uint("user_id", user.ID).Msg("send reminder failed")
			continue
		}
		sent++
	}

	w.log.Info().Int("sent", sent).Str("date", today).Msg("daily reminders dispatched")
}

func (w *ReminderWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
