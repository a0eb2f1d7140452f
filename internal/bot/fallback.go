package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "depotbot/core/telegram/helpers"
	"depotbot/core/telegram/ui"
)

var _ ui.FallbackProvider = (*App)(nil)

// UnknownText replies to messages that match no command or active session.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, "Я вас не понял. Отправьте /start, чтобы начать.")
	}
}

// UnknownDocument replies to documents arriving outside any flow.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, "Документы здесь не ожидаются.")
	}
}

// UnknownCallback answers presses on stale or unregistered inline buttons.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Кнопка устарела"})
	}
}
