// Package middleware holds the handler-chain interceptors that run before
// the lookup pipeline.
package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/filmoteka/filmoteka-bot/internal/contextkeys"
	"github.com/filmoteka/filmoteka-bot/internal/messages"
	"github.com/filmoteka/filmoteka-bot/store"
	"github.com/filmoteka/filmoteka-bot/types"
)

type Access struct {
	store types.MovieStore
}

func NewAccess(s types.MovieStore) *Access {
	return &Access{store: s}
}

// openCommands may be sent before activation.
var openCommands = map[string]bool{
	"/start":    true,
	"/activate": true,
}

// RequireUser resolves the sender against the whitelist. Activated users are
// attached to the context; anyone else is admitted only for the open
// commands and otherwise denied with the activation hint before the
// pipeline runs.
func (a *Access) RequireUser(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}
		userID := update.Message.From.ID
		chatID := update.Message.Chat.ID
		if userID == 0 || chatID == 0 {
			return
		}

		user, err := a.store.UserByTelegramID(ctx, userID)
		switch {
		case err == nil:
			next(contextkeys.WithUser(ctx, user), b, update)
			return
		case errors.Is(err, store.ErrUserNotFound):
			if openCommands[commandOf(update.Message.Text)] {
				next(ctx, b, update)
				return
			}
			_, _ = b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      messages.ActivateHint(),
				ParseMode: messages.ParseModeHTML,
			})
		default:
			log.Printf("access: resolve user %d: %v", userID, err)
			_, _ = b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      messages.ErrorDefault(),
				ParseMode: messages.ParseModeHTML,
			})
		}
	}
}

func commandOf(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	// Strip the @botname suffix used in group chats.
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return cmd
}
