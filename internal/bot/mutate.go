package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/material-desk/internal/dialog"
	"github.com/Spok95/material-desk/internal/domain/materials"
	"github.com/Spok95/material-desk/internal/gate"
	"github.com/Spok95/material-desk/internal/infra/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// executor выполняет подтверждённые действия шлюза в чате chatID.
type executor struct {
	b      *Bot
	chatID int64
	s      *session
}

func (e *executor) Delete(ctx context.Context, m materials.Material) error {
	var loadErr error
	if err := e.s.list.Delete(ctx, m.ID); err != nil {
		// удаление прошло, не удалась только перезагрузка списка
		var fe *store.FetchError
		if !errors.As(err, &fe) {
			return err
		}
		loadErr = err
	}
	e.b.log.Info("material deleted", "chat_id", e.chatID, "id", m.ID, "name", m.Name)
	e.b.send(tgbotapi.NewMessage(e.chatID, fmt.Sprintf("🗑 Материал «%s» удалён.", m.DisplayName())))
	e.b.renderList(ctx, e.chatID, e.chatID, nil, 1, loadErr)
	return nil
}

func (e *executor) OpenEdit(ctx context.Context, m materials.Material) error {
	mid := e.b.sendStep(e.chatID, materialCard(m)+"\n\nЧто изменить?", ptr(editFieldKeyboard()))
	e.b.saveLastStep(ctx, e.chatID, dialog.StateMatEditPick, dialog.Payload{"mat_id": m.ID}, mid)
	return nil
}

func ptr[T any](v T) *T { return &v }

// requestGated запоминает намерение и просит пароль.
func (b *Bot) requestGated(ctx context.Context, chatID int64, msgID int, kind gate.Kind, id string, page int) string {
	s := b.session(chatID)
	m, err := b.lookup(ctx, s, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "Материал не найден"
		}
		return store.UserMessage(err)
	}
	token, err := s.gate.Request(kind, m)
	if err != nil {
		return "Подождите, предыдущее действие ещё выполняется"
	}
	verb := "изменения"
	if kind == gate.KindDelete {
		verb = "удаления"
	}
	b.editTextWithNav(chatID, msgID, fmt.Sprintf("Для %s «%s» введите ваш пароль сообщением.", verb, m.DisplayName()))
	b.saveLastStep(ctx, chatID, dialog.StateGatePassword, dialog.Payload{
		"token":  token,
		"mat_id": id,
		"page":   float64(page),
	}, msgID)
	return ""
}

// confirmGated пароль не остаётся в истории чата; исход сообщается баннером.
func (b *Bot) confirmGated(ctx context.Context, chatID int64, msg *tgbotapi.Message, st *dialog.Item) {
	b.request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID))
	b.clearPrevStep(ctx, chatID)

	token, _ := dialog.GetString(st.Payload, "token")
	err := b.session(chatID).gate.Confirm(ctx, token, msg.Text)
	if err == nil {
		return
	}
	b.resetState(ctx, chatID)

	var ve *gate.VerificationError
	switch {
	case errors.Is(err, gate.ErrPasswordNotSet):
		b.send(tgbotapi.NewMessage(chatID, "Пароль не задан. Установите его командой /setpassword."))
	case errors.As(err, &ve):
		b.log.Warn("gate verification rejected", "chat_id", chatID)
		b.send(tgbotapi.NewMessage(chatID, "❌ Неверный пароль. Действие отменено."))
	case errors.Is(err, gate.ErrNoPending):
		b.send(tgbotapi.NewMessage(chatID, "Действие уже неактуально. Повторите его из карточки материала."))
	default:
		b.log.Error("gated action failed", "chat_id", chatID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, banner(store.UserMessage(err))))
	}
}

// askEditValue после выбора поля.
func (b *Bot) askEditValue(ctx context.Context, chatID int64, msgID int, st *dialog.Item, field string) bool {
	if st.State != dialog.StateMatEditPick && st.State != dialog.StateMatEditValue {
		return false
	}
	id, _ := dialog.GetString(st.Payload, "mat_id")
	p := dialog.Payload{"mat_id": id, "field": field}

	var kb tgbotapi.InlineKeyboardMarkup
	text := ""
	switch field {
	case "name":
		text, kb = "Выберите новое название:", namePickKeyboard("mat:ev:name")
	case "unit":
		cur, _ := b.session(chatID).list.Find(id)
		text, kb = "Выберите единицу:", unitKeyboard("mat:ev:unit", cur.Unit)
	case "qty":
		text, kb = "Введите новое количество:", navKeyboard(true, true)
	case "supplier":
		text, kb = "Введите поставщика:", navKeyboard(true, true)
	case "date":
		text, kb = "Введите дату поступления (ГГГГ-ММ-ДД или ДД.ММ.ГГГГ):", navKeyboard(true, true)
	case "desc":
		text, kb = "Введите описание (или «-», чтобы очистить):", navKeyboard(true, true)
	default:
		return false
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb))
	b.saveLastStep(ctx, chatID, dialog.StateMatEditValue, p, msgID)
	return true
}

// applyField меняет одно поле черновика; ошибка означает некорректный ввод.
func applyField(d *materials.Draft, field, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case "name":
		if value == "" {
			return fmt.Errorf("название не может быть пустым")
		}
		d.Name = value
	case "unit":
		if !knownUnit(value) {
			return fmt.Errorf("неизвестная единица %q", value)
		}
		d.Unit = materials.Unit(strings.ToLower(value))
	case "qty":
		q, err := materials.ParseQuantity(value)
		if err != nil {
			return fmt.Errorf("количество должно быть неотрицательным числом")
		}
		d.Quantity = q
	case "supplier":
		if value == "" {
			return fmt.Errorf("поставщик не может быть пустым")
		}
		d.Supplier = value
	case "date":
		t, err := materials.ParseDate(value)
		if err != nil {
			return fmt.Errorf("не понимаю дату, пример: 2024-03-15")
		}
		d.ReceivedDate = t
	case "desc":
		if value == "-" {
			value = ""
		}
		d.Description = value
	default:
		return fmt.Errorf("неизвестное поле %q", field)
	}
	return nil
}

// applyEdit берёт свежую запись из хранилища, меняет поле и сохраняет.
func (b *Bot) applyEdit(ctx context.Context, chatID, tgID int64, st *dialog.Item, value string) {
	id, _ := dialog.GetString(st.Payload, "mat_id")
	field, _ := dialog.GetString(st.Payload, "field")
	s := b.session(chatID)

	cur, err := s.list.Get(ctx, id)
	if err != nil {
		b.clearPrevStep(ctx, chatID)
		b.resetState(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, banner(store.UserMessage(err))))
		return
	}
	d := cur.Draft()
	if err := applyField(&d, field, value); err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Некорректное значение: "+err.Error()+". Попробуйте ещё раз."))
		return
	}
	if err := d.Validate(); err != nil {
		// например, у записи в хранилище нет даты поступления
		b.send(tgbotapi.NewMessage(chatID, "Запись неполная ("+err.Error()+"). Сначала исправьте это поле."))
		return
	}

	m, err := s.list.Update(ctx, id, d)
	b.clearPrevStep(ctx, chatID)
	if m == nil {
		b.log.Warn("update material failed", "chat_id", chatID, "id", id, "err", err)
		b.showCard(ctx, chatID, tgID, nil, id, 1, banner(store.UserMessage(err)))
		return
	}
	b.log.Info("material updated", "chat_id", chatID, "id", id, "field", field)
	note := "✅ Изменения сохранены"
	if p := loadProblem(err); p != "" {
		note += "\n" + banner(p)
	}
	b.renderCard(ctx, chatID, tgID, nil, *m, 1, note)
}
