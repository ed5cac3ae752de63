package lessons

import (
	"context"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ilyalavrinov/kubreminder/pkg/tgbotbase"
	log "github.com/sirupsen/logrus"
)

const digestProperty = "lessonsDigestDate"

type reminderHandler struct {
	tgbotbase.BaseHandler

	store    *Store
	cron     tgbotbase.Cron
	props    tgbotbase.PropertyStorage
	settings Settings
	now      func() time.Time
}

var _ tgbotbase.BackgroundMessageHandler = &reminderHandler{}

// NewReminderHandler schedules pre-lesson reminders and the daily digest on cron.
func NewReminderHandler(store *Store, cron tgbotbase.Cron, props tgbotbase.PropertyStorage, settings Settings) tgbotbase.BackgroundMessageHandler {
	return &reminderHandler{
		store:    store,
		cron:     cron,
		props:    props,
		settings: settings,
		now:      time.Now,
	}
}

func (h *reminderHandler) Init(outMsgCh chan<- tgbotapi.Chattable, srvCh chan<- tgbotbase.ServiceMsg) {
	h.OutMsgCh = outMsgCh
}

func (h *reminderHandler) Name() string {
	return "lesson reminders"
}

func (h *reminderHandler) Run() {
	now := h.now().In(h.store.Location())
	h.cron.AddJob(now, &reminderJob{h: h})

	when := tgbotbase.CalcNextTimeFromMidnight(now, h.settings.DigestTime)
	log.WithField("when", when).Info("Daily digest scheduled")
	h.cron.AddJob(when, &digestJob{h: h})
}

func (h *reminderHandler) broadcast(text string) {
	for _, chat := range h.settings.Destinations() {
		h.OutMsgCh <- tgbotapi.NewMessage(int64(chat), text)
	}
}

// checkReminders sends pre-lesson reminders which are due at now
func (h *reminderHandler) checkReminders(ctx context.Context, now time.Time) int {
	return h.store.RemindDue(ctx, now, h.settings.Lookahead, func(e Entry) {
		log.WithFields(log.Fields{"position": e.Position, "start": e.Start, "description": e.Description}).Info("Sending lesson reminder")
		h.broadcast(reminderText(e, h.settings.Lookahead))
	})
}

type reminderJob struct {
	h *reminderHandler
}

var _ tgbotbase.CronJob = &reminderJob{}

func (job *reminderJob) Do(scheduledWhen time.Time, cron tgbotbase.Cron) {
	now := job.h.now()
	defer cron.AddJob(nextTick(scheduledWhen, job.h.settings.PollInterval, now), job)
	defer recoverJob("reminder")

	job.h.checkReminders(context.TODO(), now)
}

// nextTick keeps the tick grid but never schedules into the past
func nextTick(scheduled time.Time, interval time.Duration, now time.Time) time.Time {
	next := scheduled.Add(interval)
	if next.Before(now) {
		next = now.Add(interval)
	}
	return next
}

func recoverJob(name string) {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{"job": name, "panic": r}).Errorf("Job panicked: %s", debug.Stack())
	}
}
