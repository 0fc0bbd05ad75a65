package bot

import (
	"context"
	"strings"

	"github.com/Spok95/material-desk/internal/dialog"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

/*** HELPERS ***/

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Warn("answer callback failed", "err", err)
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

// sendStep отправляет шаг диалога и возвращает id сообщения (0 при ошибке).
func (b *Bot) sendStep(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) int {
	m := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		m.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(m)
	if err != nil {
		b.log.Error("send failed", "err", err)
		return 0
	}
	return sent.MessageID
}

// show правит сообщение editMsgID или, если его нет, присылает новое.
func (b *Bot) show(chatID int64, editMsgID *int, text string, kb tgbotapi.InlineKeyboardMarkup) int {
	if editMsgID != nil && *editMsgID != 0 {
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, *editMsgID, text, kb))
		return *editMsgID
	}
	return b.sendStep(chatID, text, &kb)
}

// clearPrevStep убрать inline-кнопки у прошлого шага, если он был
func (b *Bot) clearPrevStep(ctx context.Context, chatID int64) {
	st, _ := b.states.Get(ctx, chatID)
	if st == nil || st.Payload == nil {
		return
	}
	if mid, ok := dialog.GetInt(st.Payload, "last_mid"); ok && mid != 0 {
		rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, mid, rm))
	}
}

// saveLastStep сохранить id текущего бот-сообщения как «последний»
func (b *Bot) saveLastStep(ctx context.Context, chatID int64, nextState dialog.State, payload dialog.Payload, newMID int) {
	if payload == nil {
		payload = dialog.Payload{}
	}
	payload["last_mid"] = float64(newMID)
	b.setState(ctx, chatID, nextState, payload)
}

func (b *Bot) setState(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) {
	if err := b.states.Set(ctx, chatID, state, payload); err != nil {
		b.log.Error("save dialog state failed", "chat_id", chatID, "state", state, "err", err)
	}
}

func (b *Bot) resetState(ctx context.Context, chatID int64) {
	if err := b.states.Reset(ctx, chatID); err != nil {
		b.log.Error("reset dialog state failed", "chat_id", chatID, "err", err)
	}
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

func (b *Bot) editTextWithNav(chatID int64, messageID int, text string) {
	kb := navKeyboard(true, true)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	b.send(edit)
}

// banner текст ошибки над экраном.
func banner(text string) string {
	return "⚠️ " + text
}

// splitCallback "mat:item:abc" -> ["mat","item","abc"]; id может содержать ':'.
func splitCallback(data string, n int) []string {
	return strings.SplitN(data, ":", n)
}

// splitFirst "+5 брак при разгрузке" -> ("+5", "брак при разгрузке").
func splitFirst(text string) (string, string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// request для методов без Message в ответе (deleteMessage и т.п.).
func (b *Bot) request(c tgbotapi.Chattable) {
	if _, err := b.api.Request(c); err != nil {
		b.log.Warn("request failed", "err", err)
	}
}
