// Package report формирует тексты отчётов и уведомлений воркера в HTML
// разметке Bot API.
package report

import (
	"html"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/value"
)

const (
	// TotalFailureNotice подходящие подарки были, но ни одна покупка не прошла.
	TotalFailureNotice = "⚠️ Найдены подходящие подарки, но <b>не удалось</b> купить.\n" +
		"💰 Пополните баланс!\n" +
		"🚦 Статус изменён на 🔴 (неактивен)."

	// AllDoneNotice все профили завершены, закупка выключена.
	AllDoneNotice = "✅ Все профили <b>завершены</b>!\n" +
		"⚠️ Сбросьте счётчики или измените профили, чтобы продолжить."

	reportHeader  = "🍀 <b>Отчёт по профилям:</b>\n"
	emptyReport   = "⚠️ Покупок не совершено."
	userbotAbsent = "💰 <b>Баланс юзербота</b>: Не подключён!"
)

// printer форматирует числа с разделителем тысяч: 1,000,000.
var printer = message.NewPrinter(language.English) //nolint:gochecknoglobals

// Cycle сводный отчёт за цикл.
func Cycle(reports []entity.ProfileReport, ownerID int64) string {
	if len(reports) == 0 {
		return reportHeader + emptyReport
	}

	entries := make([]string, 0, len(reports))
	for _, r := range reports {
		entries = append(entries, Entry(r, ownerID))
	}

	return reportHeader + strings.Join(entries, "\n")
}

// Entry блок одного профиля в отчёте.
func Entry(r entity.ProfileReport, ownerID int64) string {
	var b strings.Builder

	if r.Status == entity.ReportCompleted {
		printer.Fprintf(&b, "\n┌✅ <b>Профиль %d</b>\n", r.Index+1)
	} else {
		printer.Fprintf(&b, "\n┌⚠️ <b>Профиль %d</b> (частично)\n", r.Index+1)
	}

	printer.Fprintf(&b, "├👤 <b>Получатель:</b> %s\n", TargetDisplay(r.Target, ownerID))
	printer.Fprintf(&b, "├💸 <b>Потрачено:</b> %d / %d ★\n", r.Spent, r.Limit)
	printer.Fprintf(&b, "└🎁 <b>Куплено </b>%d из %d:", r.Bought, r.Count)

	for i, line := range r.Lines {
		prefix := "   ├"
		if i == len(r.Lines)-1 {
			prefix = "   └"
		}

		printer.Fprintf(&b, "\n%s %d ★ × %d = %d ★", prefix, line.Price, line.Quantity, line.Subtotal)
	}

	return b.String()
}

// TargetDisplay получатель для показа владельцу.
func TargetDisplay(target value.Recipient, ownerID int64) string {
	if channel, ok := target.Channel(); ok {
		return html.EscapeString(channel) + " (Канал)"
	}

	id, ok := target.UserID()
	if !ok {
		return "—"
	}

	code := "<code>" + strconv.FormatInt(id, 10) + "</code>"
	if id == ownerID {
		return code + " (Вы)"
	}

	return code
}

// Summary состояние конфигурации: статус, профили и балансы.
func Summary(cfg entity.Configuration, userbotConnected bool) string {
	status := "🔴 Неактивен"
	if cfg.Active {
		status = "🟢 Активен"
	}

	lines := []string{"🚦 <b>Статус:</b> " + status}

	for i, p := range cfg.Profiles {
		lines = append(lines, profileSummary(i, p, cfg, userbotConnected))
	}

	lines = append(lines, printer.Sprintf("\n💰 <b>Баланс бота</b>: %d ★", cfg.Balance))

	if !userbotConnected {
		return strings.Join(append(lines, userbotAbsent), "\n")
	}

	userbotLine := printer.Sprintf("💰 <b>Баланс юзербота</b>: %d ★", cfg.Userbot.Balance)
	if !cfg.Userbot.Enabled {
		userbotLine += " 🔕"
	}

	return strings.Join(append(lines, userbotLine), "\n")
}

func profileSummary(index int, p entity.Profile, cfg entity.Configuration, userbotConnected bool) string {
	name := html.EscapeString(p.Name)
	if name == "" {
		name = printer.Sprintf("Профиль %d", index+1)
	}

	var state string

	switch {
	case p.Done:
		state = " ✅ <b>(завершён)</b>"
	case p.Spent > 0:
		state = " ⚠️ <b>(частично)</b>"
	}

	muted := ""
	if p.Sender == value.SenderUserbot && (!userbotConnected || !cfg.Userbot.Enabled) {
		muted = " 🔕"
	}

	sender := "<code>Бот</code>"
	if p.Sender == value.SenderUserbot {
		sender = "<code>Юзербот</code>"
	}

	var b strings.Builder

	printer.Fprintf(&b, "\n┌🏷️ <b>%s</b>%s%s\n", name, muted, state)
	printer.Fprintf(&b, "├💰 <b>Цена</b>: %d – %d ★\n", p.MinPrice, p.MaxPrice)
	printer.Fprintf(&b, "├📦 <b>Саплай</b>: %d – %d\n", p.MinSupply, p.MaxSupply)
	printer.Fprintf(&b, "├🎁 <b>Куплено</b>: %d / %d\n", p.Bought, p.Count)
	printer.Fprintf(&b, "├⭐️ <b>Лимит</b>: %d / %d ★\n", p.Spent, p.Limit)
	printer.Fprintf(&b, "├👤 <b>Получатель</b>: %s\n", TargetDisplay(p.Target, cfg.UserID))
	printer.Fprintf(&b, "└📤 <b>Отправитель</b>: %s", sender)

	return b.String()
}
