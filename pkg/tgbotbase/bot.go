package tgbotbase

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"
)

type Bot struct {
	dealers []MessageDealer
	cfg     Config

	bot         *tgbotapi.BotAPI
	botChannels struct {
		inMsgCh   tgbotapi.UpdatesChannel
		outMsgCh  chan tgbotapi.Chattable
		serviceCh chan ServiceMsg
	}
}

// NewBot connects to Telegram unless cfg.TGBot.SkipConnect is set.
func NewBot(cfg Config) (*Bot, error) {
	b := &Bot{dealers: make([]MessageDealer, 0),
		cfg: cfg}

	b.botChannels.outMsgCh = make(chan tgbotapi.Chattable)
	b.botChannels.serviceCh = make(chan ServiceMsg)

	if cfg.TGBot.SkipConnect {
		log.Print("Skipping connection to Telegram")
		return b, nil
	}

	client, err := httpClient(cfg)
	if err != nil {
		return nil, err
	}
	b.bot, err = tgbotapi.NewBotAPIWithClient(cfg.TGBot.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to telegram: %w", err)
	}
	b.bot.Debug = cfg.TGBot.Verbose
	log.WithField("account", b.bot.Self.UserName).Info("Authorized on account")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	b.botChannels.inMsgCh = b.bot.GetUpdatesChan(u)

	return b, nil
}

func httpClient(cfg Config) (*http.Client, error) {
	if cfg.Proxy_SOCKS5.Server == "" {
		log.Printf("No proxy is set, going without any proxy")
		return &http.Client{}, nil
	}

	log.Printf("Proxy is set, connecting to '%s' as user '%s'", cfg.Proxy_SOCKS5.Server, cfg.Proxy_SOCKS5.User)
	auth := proxy.Auth{User: cfg.Proxy_SOCKS5.User,
		Password: cfg.Proxy_SOCKS5.Pass}
	dialer, err := proxy.SOCKS5("tcp", cfg.Proxy_SOCKS5.Server, &auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("cannot get proxy dialer for %q: %w", cfg.Proxy_SOCKS5.Server, err)
	}
	return &http.Client{Transport: &http.Transport{Dial: dialer.Dial}}, nil
}

func (b *Bot) AddHandler(d MessageDealer) {
	log.Printf("Preparing '%s' handler", d.name())
	d.init(b.botChannels.outMsgCh, b.botChannels.serviceCh)
	b.dealers = append(b.dealers, d)
}

// Start runs the update loop until ctx is cancelled or a handler asks the bot to stop.
func (b *Bot) Start(ctx context.Context) {
	log.Printf("Starting bot")
	for _, d := range b.dealers {
		log.Printf("Starting handler '%s'", d.name())
		d.run()
	}

	go b.serveReplies(ctx)
	isRunning := true
	for isRunning {
		select {
		case <-ctx.Done():
			log.Print("Context is done, stopping")
			isRunning = false
		case update, ok := <-b.botChannels.inMsgCh:
			if !ok {
				log.Print("Updates channel has been closed")
				isRunning = false
				continue
			}
			if b.cfg.TGBot.Verbose {
				dumpUpdate(update)
			}
			if update.Message == nil {
				log.Debug("Message: empty. Skipping")
				continue
			}

			for _, d := range b.dealers {
				d.accept(*update.Message)
			}
		case srvMsg := <-b.botChannels.serviceCh:
			log.Printf("Received service message: %+v", srvMsg)
			if srvMsg.StopBot {
				isRunning = false
			}
		}
	}

	if b.bot != nil {
		b.bot.StopReceivingUpdates()
	}

	log.Print("Main cycle has been aborted")
}

func (b *Bot) Send(msg tgbotapi.Chattable) {
	b.botChannels.outMsgCh <- msg
}

func (b *Bot) serveReplies(ctx context.Context) {
	log.Print("Started serving replies")
	for {
		var msg tgbotapi.Chattable
		select {
		case <-ctx.Done():
			log.Print("Finished serving replies")
			return
		case msg = <-b.botChannels.outMsgCh:
		}
		if b.bot == nil {
			log.WithField("msg", fmt.Sprintf("%+v", msg)).Info("Not connected, dropping reply")
			continue
		}
		if _, err := b.bot.Send(msg); err != nil {
			log.WithFields(log.Fields{"msg": fmt.Sprintf("%+v", msg), "err": err}).Error("Could not send reply")
		}
	}
}

func dumpUpdate(update tgbotapi.Update) {
	log.Debugf("Update: %+v", update)
	if update.Message != nil && update.Message.From != nil {
		log.Debugf("Message from: %s; Text: %s", update.Message.From.UserName, update.Message.Text)
		log.Debugf("Message.Chat: %+v", update.Message.Chat)
	}
}
