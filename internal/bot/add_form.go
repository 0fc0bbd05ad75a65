package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/material-desk/internal/dialog"
	"github.com/Spok95/material-desk/internal/domain/materials"
	"github.com/Spok95/material-desk/internal/infra/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// шаг назад в форме добавления
var prevAddStep = map[dialog.State]dialog.State{
	dialog.StateMatAddUnit:     dialog.StateMatAddName,
	dialog.StateMatAddQty:      dialog.StateMatAddUnit,
	dialog.StateMatAddSupplier: dialog.StateMatAddQty,
	dialog.StateMatAddDate:     dialog.StateMatAddSupplier,
	dialog.StateMatAddDesc:     dialog.StateMatAddDate,
	dialog.StateMatAddConfirm:  dialog.StateMatAddDesc,
}

// draftFromPayload собирает форму из payload. Количество и дата
// хранятся строками в том виде, в каком их приняли парсеры.
func draftFromPayload(p dialog.Payload) (materials.Draft, error) {
	name, _ := dialog.GetString(p, "name")
	unit, _ := dialog.GetString(p, "unit")
	supplier, _ := dialog.GetString(p, "supplier")
	desc, _ := dialog.GetString(p, "desc")
	qtyRaw, _ := dialog.GetString(p, "qty")
	dateRaw, _ := dialog.GetString(p, "date")

	qty, err := materials.ParseQuantity(qtyRaw)
	if err != nil {
		return materials.Draft{}, err
	}
	date, err := materials.ParseDate(dateRaw)
	if err != nil {
		return materials.Draft{}, err
	}
	d := materials.Draft{
		Name:         name,
		Unit:         materials.Unit(unit),
		Quantity:     qty,
		Supplier:     supplier,
		ReceivedDate: date,
		Description:  desc,
	}
	return d, d.Validate()
}

// askAddStep показывает подсказку для шага state. note выводится над текстом.
func (b *Bot) askAddStep(ctx context.Context, chatID int64, editMsgID *int, state dialog.State, p dialog.Payload, note string) {
	var (
		text string
		kb   tgbotapi.InlineKeyboardMarkup
	)
	switch state {
	case dialog.StateMatAddName:
		text = "Добавление материала.\nВыберите материал:"
		kb = namePickKeyboard("mat:add:name")
	case dialog.StateMatAddUnit:
		name, _ := dialog.GetString(p, "name")
		unit, _ := dialog.GetString(p, "unit")
		text = fmt.Sprintf("Материал: %s\nЕдиница по умолчанию: %s. Подтвердите или выберите другую:", name, unit)
		kb = unitKeyboard("mat:add:unit", materials.Unit(unit))
	case dialog.StateMatAddQty:
		text = "Введите количество (например 12 или 2,5):"
		kb = navKeyboard(true, true)
	case dialog.StateMatAddSupplier:
		text = "Введите поставщика:"
		kb = navKeyboard(true, true)
	case dialog.StateMatAddDate:
		text = "Введите дату поступления (ГГГГ-ММ-ДД или ДД.ММ.ГГГГ):"
		kb = skipKeyboard("mat:add:date:today", "📅 Сегодня")
	case dialog.StateMatAddDesc:
		text = "Введите описание или нажмите «Пропустить»:"
		kb = skipKeyboard("mat:add:desc:skip", "⏭ Пропустить")
	case dialog.StateMatAddConfirm:
		d, err := draftFromPayload(p)
		if err != nil {
			// форма неполная: вернёмся к началу
			b.log.Warn("add form payload invalid", "chat_id", chatID, "err", err)
			b.askAddStep(ctx, chatID, editMsgID, dialog.StateMatAddName, dialog.Payload{"page": p["page"]}, "Форма заполнена не полностью, начните заново.")
			return
		}
		text = draftSummary(d)
		kb = addConfirmKeyboard()
	default:
		return
	}
	if note != "" {
		text = note + "\n\n" + text
	}
	mid := b.show(chatID, editMsgID, text, kb)
	b.saveLastStep(ctx, chatID, state, p, mid)
}

func (b *Bot) startAdd(ctx context.Context, chatID int64, msgID int, page int) {
	b.askAddStep(ctx, chatID, &msgID, dialog.StateMatAddName, dialog.Payload{"page": float64(page)}, "")
}

func (b *Bot) addPickName(ctx context.Context, chatID int64, msgID int, st *dialog.Item, idx int) bool {
	names := materials.KnownNames()
	if st.State != dialog.StateMatAddName || idx < 0 || idx >= len(names) {
		return false
	}
	p := st.Payload.Clone()
	p["name"] = names[idx]
	p["unit"] = string(materials.UnitFor(names[idx]))
	b.askAddStep(ctx, chatID, &msgID, dialog.StateMatAddUnit, p, "")
	return true
}

func (b *Bot) addPickUnit(ctx context.Context, chatID int64, msgID int, st *dialog.Item, unit string) bool {
	if st.State != dialog.StateMatAddUnit || !knownUnit(unit) {
		return false
	}
	p := st.Payload.Clone()
	p["unit"] = unit
	b.askAddStep(ctx, chatID, &msgID, dialog.StateMatAddQty, p, "")
	return true
}

func (b *Bot) addToday(ctx context.Context, chatID int64, msgID int, st *dialog.Item) bool {
	if st.State != dialog.StateMatAddDate {
		return false
	}
	p := st.Payload.Clone()
	p["date"] = today(b.now).Format(dateLayout)
	b.askAddStep(ctx, chatID, &msgID, dialog.StateMatAddDesc, p, "")
	return true
}

func (b *Bot) addSkipDesc(ctx context.Context, chatID int64, msgID int, st *dialog.Item) bool {
	if st.State != dialog.StateMatAddDesc {
		return false
	}
	p := st.Payload.Clone()
	p["desc"] = ""
	b.askAddStep(ctx, chatID, &msgID, dialog.StateMatAddConfirm, p, "")
	return true
}

// addInput текстовые шаги формы: количество, поставщик, дата, описание.
func (b *Bot) addInput(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	p := st.Payload.Clone()
	var next dialog.State
	switch st.State {
	case dialog.StateMatAddQty:
		q, err := materials.ParseQuantity(text)
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Количество должно быть неотрицательным числом. Попробуйте ещё раз."))
			return
		}
		p["qty"] = q.String()
		next = dialog.StateMatAddSupplier
	case dialog.StateMatAddSupplier:
		if text == "" {
			b.send(tgbotapi.NewMessage(chatID, "Поставщик не может быть пустым."))
			return
		}
		p["supplier"] = text
		next = dialog.StateMatAddDate
	case dialog.StateMatAddDate:
		d, err := materials.ParseDate(text)
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Не понимаю дату. Пример: 2024-03-15 или 15.03.2024."))
			return
		}
		p["date"] = d.Format(dateLayout)
		next = dialog.StateMatAddDesc
	case dialog.StateMatAddDesc:
		p["desc"] = text
		next = dialog.StateMatAddConfirm
	default:
		return
	}
	b.clearPrevStep(ctx, chatID)
	b.askAddStep(ctx, chatID, nil, next, p, "")
}

// addSave отправляет форму. Пока запрос в полёте, состояние StateMatAddSaving
// и повторное нажатие «Сохранить» отклоняется. При ошибке форма сохраняется.
func (b *Bot) addSave(ctx context.Context, chatID, tgID int64, msgID int, st *dialog.Item) string {
	switch st.State {
	case dialog.StateMatAddSaving:
		return "Сохранение уже выполняется"
	case dialog.StateMatAddConfirm:
	default:
		return "Форма уже отправлена"
	}
	d, err := draftFromPayload(st.Payload)
	if err != nil {
		b.askAddStep(ctx, chatID, &msgID, dialog.StateMatAddName, dialog.Payload{"page": st.Payload["page"]}, banner(err.Error()))
		return ""
	}

	b.setState(ctx, chatID, dialog.StateMatAddSaving, st.Payload)
	b.editTextAndClear(chatID, msgID, draftSummary(d)+"\n\n⏳ Сохраняю…")

	m, err := b.session(chatID).list.Create(ctx, d)
	if m == nil {
		b.log.Warn("create material failed", "chat_id", chatID, "err", err)
		b.askAddStep(ctx, chatID, &msgID, dialog.StateMatAddConfirm, st.Payload, banner(store.UserMessage(err)))
		return ""
	}
	b.log.Info("material created", "chat_id", chatID, "id", m.ID, "name", m.Name)
	b.editTextAndClear(chatID, msgID, "✅ Материал добавлен:\n\n"+materialCard(*m))
	b.renderList(ctx, chatID, tgID, nil, 1, err)
	return ""
}

func knownUnit(u string) bool {
	for _, x := range allUnits {
		if strings.EqualFold(string(x), u) {
			return true
		}
	}
	return false
}
