package lessons

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ilyalavrinov/kubreminder/pkg/tgbotbase"
	log "github.com/sirupsen/logrus"
)

type request struct {
	user tgbotbase.UserID
	chat tgbotbase.ChatID
	args []string
}

type command struct {
	run        func(ctx context.Context, req request) (string, error)
	deniedText string
	usageText  string
}

type commandHandler struct {
	tgbotbase.BaseHandler

	store    *Store
	settings Settings
	now      func() time.Time
	commands map[string]command
}

var _ tgbotbase.IncomingMessageHandler = &commandHandler{}

func NewCommandHandler(store *Store, settings Settings) tgbotbase.IncomingMessageHandler {
	return newCommandHandler(store, settings, time.Now)
}

func newCommandHandler(store *Store, settings Settings, now func() time.Time) *commandHandler {
	h := &commandHandler{
		store:    store,
		settings: settings,
		now:      now,
	}
	h.commands = map[string]command{
		"start":   {run: h.start},
		"lessons": {run: h.upcoming},
		"today":   {run: h.today},
		"add_lesson": {
			run:        h.admin(h.add),
			deniedText: textAddDenied,
			usageText:  textAddUsage,
		},
		"delete_lesson": {
			run:        h.admin(h.delete),
			deniedText: textDeleteDenied,
			usageText:  textDeleteUsage,
		},
	}
	return h
}

func (h *commandHandler) Init(outMsgCh chan<- tgbotapi.Chattable, srvCh chan<- tgbotbase.ServiceMsg) tgbotbase.HandlerTrigger {
	h.OutMsgCh = outMsgCh

	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return tgbotbase.NewHandlerTrigger(nil, names)
}

func (h *commandHandler) Name() string {
	return "lesson commands"
}

func (h *commandHandler) HandleOne(msg tgbotapi.Message) {
	name := msg.Command()
	cmd, found := h.commands[name]
	if !found || msg.Chat == nil {
		log.WithField("text", msg.Text).Debug("Not a lesson command")
		return
	}

	req := request{
		chat: tgbotbase.ChatID(msg.Chat.ID),
		args: strings.Fields(msg.CommandArguments()),
	}
	if msg.From != nil {
		req.user = tgbotbase.UserID(msg.From.ID)
	}

	text, err := cmd.run(context.TODO(), req)
	if err != nil {
		log.WithFields(log.Fields{"cmd": name, "user": req.user, "chat": req.chat, "err": err}).Info("Command refused")
		text = cmd.errorText(err)
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	h.OutMsgCh <- reply
}

func (c command) errorText(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied) && c.deniedText != "":
		return c.deniedText
	case errors.Is(err, ErrChatNotAllowed):
		return textChatNotAllowed
	case errors.Is(err, ErrFormat) && c.usageText != "":
		return c.usageText
	case errors.Is(err, ErrOutOfRange):
		return textBadPosition
	}
	return textInternalFailure
}

func (h *commandHandler) admin(next func(ctx context.Context, req request) (string, error)) func(ctx context.Context, req request) (string, error) {
	return func(ctx context.Context, req request) (string, error) {
		if !h.settings.isAdmin(req.user) {
			return "", fmt.Errorf("%w: user %d", ErrPermissionDenied, req.user)
		}
		if !h.settings.chatAllowed(req.chat) {
			return "", fmt.Errorf("%w: chat %d", ErrChatNotAllowed, req.chat)
		}
		return next(ctx, req)
	}
}

func (h *commandHandler) start(ctx context.Context, req request) (string, error) {
	return startText(h.now().In(h.store.Location()), h.settings), nil
}

func (h *commandHandler) upcoming(ctx context.Context, req request) (string, error) {
	if h.store.Len() == 0 {
		return textNoLessons, nil
	}
	entries := h.store.Upcoming(h.now(), h.settings.UpcomingLimit)
	if len(entries) == 0 {
		return textNoUpcoming, nil
	}
	return upcomingText(entries), nil
}

func (h *commandHandler) today(ctx context.Context, req request) (string, error) {
	entries := h.store.Today(h.now())
	if len(entries) == 0 {
		return textNothingToday, nil
	}
	return todayText(entries), nil
}

func (h *commandHandler) add(ctx context.Context, req request) (string, error) {
	if len(req.args) < 3 {
		return "", fmt.Errorf("%w: expected date, time and description, got %d args", ErrFormat, len(req.args))
	}
	added, err := h.store.Add(ctx, req.args[0], req.args[1], strings.Join(req.args[2:], " "))
	if err != nil {
		return "", err
	}
	return addedText(added, h.store.All()), nil
}

func (h *commandHandler) delete(ctx context.Context, req request) (string, error) {
	if len(req.args) != 1 {
		return "", fmt.Errorf("%w: expected a single lesson number, got %d args", ErrFormat, len(req.args))
	}
	position, err := strconv.Atoi(req.args[0])
	if err != nil {
		return "", fmt.Errorf("%w: lesson number %q: %s", ErrFormat, req.args[0], err)
	}
	removed, err := h.store.Delete(ctx, position)
	if err != nil {
		return "", err
	}
	return deletedText(removed), nil
}
