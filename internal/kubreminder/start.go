package kubreminder

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ilyalavrinov/kubreminder/internal/kubreminder/lessons"
	"github.com/ilyalavrinov/kubreminder/pkg/tgbotbase"
)

func Start(cfg_filename string) error {
	fullcfg, err := NewConfig(cfg_filename)
	if err != nil {
		log.Printf("My bot cannot be started due to error: %s", err)
		return err
	}
	if fullcfg.TGBot.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.Print("Starting lesson reminder bot")

	loc, err := fullcfg.Location()
	if err != nil {
		return err
	}
	settings, err := fullcfg.Settings()
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"chats":     settings.Destinations(),
		"admins":    settings.Admins,
		"timezone":  loc,
		"lookahead": settings.Lookahead,
	}).Info("Reminder settings")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tgcfg := tgbotbase.Config{TGBot: fullcfg.TGBot,
		Proxy_SOCKS5: fullcfg.Proxy_SOCKS5}
	bot, err := tgbotbase.NewBot(tgcfg)
	if err != nil {
		return err
	}

	var storage lessons.Storage
	var propstorage tgbotbase.PropertyStorage
	if fullcfg.Redis.Server != "" {
		redispool, err := tgbotbase.NewRedisPool(ctx, fullcfg.Redis)
		if err != nil {
			return err
		}
		storage = lessons.NewRedisStorage(redispool)
		propstorage = tgbotbase.NewRedisPropertyStorage(redispool)
		log.WithField("server", fullcfg.Redis.Server).Info("Keeping lessons in redis")
	} else {
		storage = lessons.NewFileStorage(fullcfg.Reminder.LessonsFile)
		propstorage = tgbotbase.NewMemoryPropertyStorage()
		log.WithField("file", fullcfg.Reminder.LessonsFile).Info("Keeping lessons in file")
	}

	store := lessons.NewStore(ctx, storage, loc)
	if fullcfg.Reminder.WatchFile && fullcfg.Redis.Server == "" {
		if err := lessons.WatchFile(ctx, fullcfg.Reminder.LessonsFile, store); err != nil {
			log.WithField("err", err).Error("Lesson file will not be watched")
		}
	}
	cron := tgbotbase.NewCron(ctx)

	bot.AddHandler(tgbotbase.NewIncomingMessageDealer(lessons.NewCommandHandler(store, settings)))
	bot.AddHandler(tgbotbase.NewBackgroundMessageDealer(lessons.NewReminderHandler(store, cron, propstorage, settings)))
	bot.Start(ctx)

	log.Print("Stopping lesson reminder bot")
	return nil
}
