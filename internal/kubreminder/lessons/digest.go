package lessons

import (
	"context"
	"time"

	"github.com/ilyalavrinov/kubreminder/pkg/tgbotbase"
	log "github.com/sirupsen/logrus"
)

// sendDigest sends today's lessons once per calendar date. Returns true if the date was not yet digested.
func (h *reminderHandler) sendDigest(ctx context.Context, now time.Time) bool {
	today := now.In(h.store.Location()).Format(dateLayout)
	last, err := h.props.GetProperty(ctx, digestProperty, 0, h.settings.PrimaryChat)
	if err != nil {
		log.WithField("err", err).Error("Could not read last digest date, sending anyway")
	}
	if last == today {
		log.WithField("date", today).Info("Digest has already been sent")
		return false
	}

	entries := h.store.Today(now)
	if len(entries) == 0 {
		log.WithField("date", today).Info("No lessons today, digest is skipped")
	} else {
		h.broadcast(digestText(entries))
	}

	if err := h.props.SetPropertyForChat(ctx, digestProperty, h.settings.PrimaryChat, today); err != nil {
		log.WithFields(log.Fields{"err": err, "date": today}).Error("Could not store digest date")
	}
	return true
}

type digestJob struct {
	h *reminderHandler
}

var _ tgbotbase.CronJob = &digestJob{}

func (job *digestJob) Do(scheduledWhen time.Time, cron tgbotbase.Cron) {
	loc := job.h.store.Location()
	defer cron.AddJob(tgbotbase.CalcNextTimeFromMidnight(scheduledWhen.In(loc).Add(time.Second), job.h.settings.DigestTime), job)
	defer recoverJob("digest")

	job.h.sendDigest(context.TODO(), job.h.now())
}
