package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/value"
)

const ownerID int64 = 1217838677

func mustUser(t *testing.T, id int64) value.Recipient {
	t.Helper()

	r, err := value.UserRecipient(id)
	require.NoError(t, err)

	return r
}

func TestTargetDisplay(t *testing.T) {
	channel, err := value.ChannelRecipient("giftdrops")
	require.NoError(t, err)

	markup, err := value.ChannelRecipient("<b>drops</b>&co")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		target   value.Recipient
		expected string
	}{
		{name: "owner", target: mustUser(t, ownerID), expected: "<code>1217838677</code> (Вы)"},
		{name: "other user", target: mustUser(t, 5), expected: "<code>5</code>"},
		{name: "channel", target: channel, expected: "@giftdrops (Канал)"},
		{name: "channel with markup", target: markup, expected: "@&lt;b&gt;drops&lt;/b&gt;&amp;co (Канал)"},
		{name: "empty", target: value.Recipient{}, expected: "—"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, TargetDisplay(tc.target, ownerID))
		})
	}
}

func TestCycleReport(t *testing.T) {
	rq := require.New(t)

	completed := entity.ProfileReport{
		Index:  0,
		Status: entity.ReportCompleted,
		Target: mustUser(t, ownerID),
		Spent:  25000,
		Limit:  1000000,
		Bought: 3,
		Count:  3,
		Lines: []entity.ReportLine{
			{ItemID: "a", Price: 10000, Quantity: 2, Subtotal: 20000},
			{ItemID: "b", Price: 5000, Quantity: 1, Subtotal: 5000},
		},
	}
	partial := entity.ProfileReport{
		Index:  1,
		Status: entity.ReportPartial,
		Target: mustUser(t, 5),
		Spent:  5000,
		Limit:  20000,
		Bought: 1,
		Count:  5,
		Lines:  []entity.ReportLine{{ItemID: "b", Price: 5000, Quantity: 1, Subtotal: 5000}},
	}

	expected := "🍀 <b>Отчёт по профилям:</b>\n" +
		"\n┌✅ <b>Профиль 1</b>\n" +
		"├👤 <b>Получатель:</b> <code>1217838677</code> (Вы)\n" +
		"├💸 <b>Потрачено:</b> 25,000 / 1,000,000 ★\n" +
		"└🎁 <b>Куплено </b>3 из 3:\n" +
		"   ├ 10,000 ★ × 2 = 20,000 ★\n" +
		"   └ 5,000 ★ × 1 = 5,000 ★\n" +
		"\n┌⚠️ <b>Профиль 2</b> (частично)\n" +
		"├👤 <b>Получатель:</b> <code>5</code>\n" +
		"├💸 <b>Потрачено:</b> 5,000 / 20,000 ★\n" +
		"└🎁 <b>Куплено </b>1 из 5:\n" +
		"   └ 5,000 ★ × 1 = 5,000 ★"

	rq.Equal(expected, Cycle([]entity.ProfileReport{completed, partial}, ownerID))
	rq.Equal("🍀 <b>Отчёт по профилям:</b>\n⚠️ Покупок не совершено.", Cycle(nil, ownerID))
}

func TestSummary(t *testing.T) {
	rq := require.New(t)

	cfg := entity.DefaultConfiguration(ownerID)
	cfg.Balance = 12345
	cfg.Active = true
	cfg.Profiles[0].Name = "<main>"
	cfg.Profiles[0].Spent = 100

	userbotProfile := entity.DefaultProfile(ownerID)
	userbotProfile.Sender = value.SenderUserbot
	userbotProfile.Done = true
	cfg.Profiles = append(cfg.Profiles, userbotProfile)

	text := Summary(cfg, false)
	rq.Contains(text, "🚦 <b>Статус:</b> 🟢 Активен")
	rq.Contains(text, "┌🏷️ <b>&lt;main&gt;</b> ⚠️ <b>(частично)</b>")
	rq.Contains(text, "┌🏷️ <b>Профиль 2</b> 🔕 ✅ <b>(завершён)</b>")
	rq.Contains(text, "├💰 <b>Цена</b>: 5,000 – 10,000 ★")
	rq.Contains(text, "└📤 <b>Отправитель</b>: <code>Юзербот</code>")
	rq.Contains(text, "💰 <b>Баланс бота</b>: 12,345 ★")
	rq.Contains(text, "Не подключён!")

	cfg.Userbot.Balance = 2000
	text = Summary(cfg, true)
	rq.Contains(text, "💰 <b>Баланс юзербота</b>: 2,000 ★ 🔕")

	cfg.Userbot.Enabled = true
	text = Summary(cfg, true)
	rq.Contains(text, "┌🏷️ <b>Профиль 2</b> ✅ <b>(завершён)</b>")
	rq.NotContains(text, "🔕")
}
