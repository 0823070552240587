package handlers

import (
	"context"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/filmoteka/filmoteka-bot/internal/contextkeys"
	"github.com/filmoteka/filmoteka-bot/internal/messages"
)

func (h *Handlers) HandleCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	fields := strings.Fields(update.Message.Text)
	cmd := fields[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	switch cmd {
	case "/start":
		h.handleStart(ctx, b, chatID)
	case "/activate":
		h.handleActivate(ctx, b, update, chatID, args)
	case "/my_sub":
		h.handleMySub(ctx, b, chatID)
	case "/amount":
		h.handleAmount(ctx, b, chatID)
	case "/random":
		h.handleRandom(ctx, b, chatID)
	case "/sub_buy":
		h.reply(ctx, b, chatID, messages.SubBuyStub(), true)
	default:
		h.reply(ctx, b, chatID, messages.ErrorUnknownCommand(), true)
	}
}

func (h *Handlers) handleStart(ctx context.Context, b *bot.Bot, chatID int64) {
	if _, ok := contextkeys.GetUser(ctx); ok {
		h.reply(ctx, b, chatID, messages.StartWelcome(), true)
		return
	}
	h.reply(ctx, b, chatID, messages.ActivateHint(), true)
}

func (h *Handlers) handleActivate(ctx context.Context, b *bot.Bot, update *models.Update, chatID int64, args []string) {
	if len(args) == 0 || args[0] != h.activationCode {
		h.reply(ctx, b, chatID, messages.ActivateWrongCode(), true)
		return
	}
	if _, ok := contextkeys.GetUser(ctx); ok {
		h.reply(ctx, b, chatID, messages.AlreadyActivated(), true)
		return
	}

	from := update.Message.From
	if _, err := h.store.CreateUser(ctx, from.ID, from.Username); err != nil {
		log.Printf("activate: create user %d: %v", from.ID, err)
		h.reply(ctx, b, chatID, messages.ErrorDefault(), true)
		return
	}
	h.reply(ctx, b, chatID, messages.ActivateSuccess(), true)
}

func (h *Handlers) handleMySub(ctx context.Context, b *bot.Bot, chatID int64) {
	user, ok := contextkeys.GetUser(ctx)
	if !ok {
		h.reply(ctx, b, chatID, messages.ActivateHint(), true)
		return
	}
	sub, err := h.store.SubscriptionByUser(ctx, user.ID)
	if err != nil {
		log.Printf("my_sub: user %d: %v", user.TelegramID, err)
		h.reply(ctx, b, chatID, messages.ErrorDefault(), true)
		return
	}
	h.reply(ctx, b, chatID, messages.SubscriptionStatus(sub.Name, sub.MaxRequest), true)
}

func (h *Handlers) handleAmount(ctx context.Context, b *bot.Bot, chatID int64) {
	user, ok := contextkeys.GetUser(ctx)
	if !ok {
		h.reply(ctx, b, chatID, messages.ActivateHint(), true)
		return
	}
	used, max, err := h.lookup.Usage(ctx, user)
	if err != nil {
		log.Printf("amount: user %d: %v", user.TelegramID, err)
		h.reply(ctx, b, chatID, messages.ErrorDefault(), true)
		return
	}
	h.reply(ctx, b, chatID, messages.AmountStatus(used, max), true)
}

// handleRandom runs the discovery flow: bounded retries against scraped
// candidate titles, no quota spent.
func (h *Handlers) handleRandom(ctx context.Context, b *bot.Bot, chatID int64) {
	findCtx, cancel := context.WithTimeout(ctx, h.discoveryTimeout)
	defer cancel()

	movie, err := h.discovery.Find(findCtx)
	if err != nil {
		log.Printf("random: %v", err)
		h.reply(ctx, b, chatID, messages.RandomFailed(), false)
		return
	}
	h.reply(ctx, b, chatID, messages.MovieSummary(movie), false)
}
