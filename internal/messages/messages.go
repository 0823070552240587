package messages

import (
	"fmt"
	"strings"

	"github.com/filmoteka/filmoteka-bot/internal/omdb"
)

const ParseModeHTML = "HTML"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func StartWelcome() string {
	return "🎬 <b>Введите название фильма для поиска.</b>\n" +
		"Для более точного поиска можете ввести и год выпуска, например: <code>Inception 2010</code>"
}

func ActivateHint() string {
	return "🔒 <b>У вас нет доступа к боту</b>\nДля активации отправьте команду /activate &lt;код&gt;"
}

func ActivateSuccess() string {
	return "✅ <b>Успешно активировано!</b>\nВведите название фильма для поиска"
}

func ActivateWrongCode() string {
	return "🚫 <b>Неверный код активации</b>"
}

func AlreadyActivated() string {
	return "ℹ️ Вы уже имеете доступ к боту.\nВведите название фильма для поиска"
}

func SubscriptionStatus(name string, maxRequest int) string {
	return fmt.Sprintf("⭐ <b>Статус подписки:</b> %s\n"+
		"Количество возможных запросов: %d\n"+
		"Посмотреть количество текущих запросов: /amount", Escape(name), maxRequest)
}

func AmountStatus(used, maxRequest int) string {
	return fmt.Sprintf("📊 Количество запросов в сутки: %d/%d", used, maxRequest)
}

func MovieNotFound() string {
	return "Фильм не найден"
}

func QuotaExceeded(maxRequest int) string {
	return fmt.Sprintf("⛔ <b>Лимит запросов исчерпан</b>\n"+
		"Доступно %d запросов в сутки.\n"+
		"Чтобы увеличить лимит, оформите подписку: /sub_buy", maxRequest)
}

func SubBuyStub() string {
	return "💳 <b>Покупка подписки пока недоступна</b>\nМы работаем над этим. Следите за обновлениями!"
}

func RandomFailed() string {
	return "🎲 Не удалось подобрать случайный фильм, попробуйте ещё раз"
}

func ErrorDefault() string {
	return "🚫 <b>Ошибка</b>\nПопробуйте ещё раз."
}

func ErrorUnknownCommand() string {
	return "❓ <b>Команда не найдена</b>"
}

// MovieSummary renders the canonical record as the plain-text card sent to
// the user. Plain text on purpose: plots routinely contain characters that
// break HTML parse mode.
func MovieSummary(m *omdb.Movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Название: %s\n", m.Title)
	fmt.Fprintf(&b, "Описание: %s\n", m.Plot)
	fmt.Fprintf(&b, "Тип: %s\n", m.Type)
	fmt.Fprintf(&b, "Возрастной рейтинг: %s\n", m.Rated)
	fmt.Fprintf(&b, "Релиз: %s\n", m.Released)
	fmt.Fprintf(&b, "Длительность: %s\n", m.Runtime)
	fmt.Fprintf(&b, "Жанр: %s\n", m.Genre)
	fmt.Fprintf(&b, "Режиссер: %s\n", m.Director)
	fmt.Fprintf(&b, "Сценарий: %s\n", m.Writer)
	fmt.Fprintf(&b, "Актеры: %s\n", m.Actors)
	fmt.Fprintf(&b, "Страна: %s\n", m.Country)
	fmt.Fprintf(&b, "Награды: %s\n", m.Awards)
	fmt.Fprintf(&b, "Сборы: %s\n", m.BoxOffice)
	fmt.Fprintf(&b, "Постер: %s\n", m.Poster)
	b.WriteString("Рейтинг:\n")
	fmt.Fprintf(&b, "  IMDb: %s\n", m.RatingIMDb)
	fmt.Fprintf(&b, "  Rotten Tomatoes: %s\n", m.RatingRottenTom)
	fmt.Fprintf(&b, "  Metacritic: %s\n", m.RatingMetacritic)
	return b.String()
}
