package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/filmoteka/filmoteka-bot/internal/discovery"
	"github.com/filmoteka/filmoteka-bot/internal/lookup"
	"github.com/filmoteka/filmoteka-bot/internal/messages"
	"github.com/filmoteka/filmoteka-bot/types"
)

type Handlers struct {
	store            types.MovieStore
	lookup           *lookup.Service
	discovery        *discovery.Finder
	activationCode   string
	discoveryTimeout time.Duration
}

func NewHandlers(store types.MovieStore, lookupSvc *lookup.Service, finder *discovery.Finder, activationCode string) *Handlers {
	return &Handlers{
		store:            store,
		lookup:           lookupSvc,
		discovery:        finder,
		activationCode:   activationCode,
		discoveryTimeout: 30 * time.Second,
	}
}

func (h *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		h.HandleCommand(ctx, b, update)
		return
	}
	h.HandleText(ctx, b, update)
}

func (h *Handlers) reply(ctx context.Context, b *bot.Bot, chatID int64, text string, html bool) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if html {
		params.ParseMode = messages.ParseModeHTML
	}
	_, _ = b.SendMessage(ctx, params)
}
