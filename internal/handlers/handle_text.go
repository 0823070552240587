package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/filmoteka/filmoteka-bot/internal/contextkeys"
	"github.com/filmoteka/filmoteka-bot/internal/messages"
)

// HandleText runs one free-text movie query through the quota-gated
// pipeline and delivers whatever reply it decided.
func (h *Handlers) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	user, ok := contextkeys.GetUser(ctx)
	if !ok {
		// The access middleware denies unactivated users before this
		// point; reaching here without one is a wiring bug.
		h.reply(ctx, b, chatID, messages.ActivateHint(), true)
		return
	}

	out := h.lookup.Lookup(ctx, user, update.Message.Text)
	h.reply(ctx, b, chatID, out.Reply, out.HTML)
}
