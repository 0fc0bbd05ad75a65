package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/material-desk/internal/dialog"
	"github.com/Spok95/material-desk/internal/domain/materials"
	"github.com/Spok95/material-desk/internal/domain/users"
	"github.com/Spok95/material-desk/internal/gate"
	"github.com/Spok95/material-desk/internal/infra/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `Команды:
/start — начать работу
/materials — список материалов
/invoices — счета поставщиков
/setpassword — задать пароль для подтверждения изменений
/cancel — отменить текущее действие
/grant <telegram_id> <admin|editor|viewer> — выдать роль (только админ)
/help — помощь`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	tgID := msg.From.ID

	var u *users.User
	if cmd := msg.Command(); cmd != "start" && cmd != "help" {
		if u = b.operator(ctx, tgID); u == nil {
			b.send(tgbotapi.NewMessage(chatID, "Сначала нажмите /start"))
			return
		}
	}

	switch msg.Command() {
	case "start":
		// не затираем роль, если оператор уже существует
		role := users.RoleViewer
		if existing := b.operator(ctx, tgID); existing != nil && existing.Role != "" {
			role = existing.Role
		}
		if tgID == b.adminChat {
			role = users.RoleAdmin
		}
		op, err := b.users.UpsertFromTelegram(ctx, users.Telegram{
			ID:        tgID,
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		}, role)
		if err != nil {
			b.log.Error("upsert operator failed", "tg_id", tgID, "err", err)
			b.send(tgbotapi.NewMessage(chatID, "Ошибка: не удалось сохранить профиль"))
			return
		}
		b.resetState(ctx, chatID)
		text := fmt.Sprintf("Привет! Ваша роль: %s.\nМатериалы и счета доступны через кнопки снизу.", op.Role)
		if op.Role.CanMutate() && !op.HasPassword() {
			text += "\n\nДля изменения и удаления материалов задайте пароль: /setpassword"
		}
		m := tgbotapi.NewMessage(chatID, text)
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)

	case "help":
		b.send(tgbotapi.NewMessage(chatID, helpText))

	case "materials":
		b.clearPrevStep(ctx, chatID)
		b.showList(ctx, chatID, tgID, nil, 1, true)

	case "invoices":
		b.clearPrevStep(ctx, chatID)
		b.showInvoices(ctx, chatID, nil)

	case "cancel":
		b.clearPrevStep(ctx, chatID)
		b.session(chatID).gate.Cancel()
		b.resetState(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Операция отменена."))

	case "setpassword":
		text := "Введите новый пароль (минимум 4 символа). Сообщение с паролем будет удалено."
		if u.HasPassword() {
			text = "Введите текущий и новый пароль через пробел. Сообщение с паролем будет удалено."
		}
		mid := b.sendStep(chatID, text, ptr(navKeyboard(false, true)))
		b.saveLastStep(ctx, chatID, dialog.StateSetPassword, dialog.Payload{"has_old": u.HasPassword()}, mid)

	case "grant":
		if u.Role != users.RoleAdmin {
			b.send(tgbotapi.NewMessage(chatID, "Доступ запрещён"))
			return
		}
		target, role, err := parseGrantArgs(msg.CommandArguments())
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Формат: /grant <telegram_id> <admin|editor|viewer>"))
			return
		}
		if err := b.users.SetRole(ctx, target, role); err != nil {
			if errors.Is(err, users.ErrNotFound) {
				b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Оператор %d ещё не нажимал /start", target)))
				return
			}
			b.log.Error("set role failed", "target", target, "err", err)
			b.send(tgbotapi.NewMessage(chatID, "Не удалось изменить роль"))
			return
		}
		b.log.Info("role granted", "by", tgID, "target", target, "role", role)
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Роль оператора %d: %s", target, role)))

	default:
		b.send(tgbotapi.NewMessage(chatID, "Не знаю такую команду. Наберите /help"))
	}
}

func parseGrantArgs(args string) (int64, users.Role, error) {
	f := strings.Fields(args)
	if len(f) != 2 {
		return 0, "", fmt.Errorf("want 2 args, got %d", len(f))
	}
	id, err := strconv.ParseInt(f[0], 10, 64)
	if err != nil {
		return 0, "", err
	}
	switch r := users.Role(strings.ToLower(f[1])); r {
	case users.RoleAdmin, users.RoleEditor, users.RoleViewer:
		return id, r, nil
	}
	return 0, "", fmt.Errorf("unknown role %q", f[1])
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	tgID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if b.operator(ctx, tgID) == nil {
		b.send(tgbotapi.NewMessage(chatID, "Сначала нажмите /start"))
		return
	}

	// нижняя панель работает из любого состояния
	switch text {
	case btnMaterials:
		b.clearPrevStep(ctx, chatID)
		b.session(chatID).gate.Cancel()
		b.showList(ctx, chatID, tgID, nil, 1, true)
		return
	case btnInvoices:
		b.clearPrevStep(ctx, chatID)
		b.session(chatID).gate.Cancel()
		b.showInvoices(ctx, chatID, nil)
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state failed", "chat_id", chatID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка, попробуйте ещё раз"))
		return
	}

	switch st.State {
	case dialog.StateMatSearch:
		b.clearPrevStep(ctx, chatID)
		b.applySearch(ctx, chatID, tgID, nil, text)

	case dialog.StateMatAddQty, dialog.StateMatAddSupplier, dialog.StateMatAddDate, dialog.StateMatAddDesc:
		b.addInput(ctx, chatID, st, text)

	case dialog.StateGatePassword:
		b.confirmGated(ctx, chatID, msg, st)

	case dialog.StateMatEditValue:
		b.applyEdit(ctx, chatID, tgID, st, text)

	case dialog.StateMatStockDelta:
		b.applyStock(ctx, chatID, tgID, st, text)

	case dialog.StateInvPayment:
		b.paymentInput(ctx, chatID, st, text)

	case dialog.StateSetPassword:
		b.setPassword(ctx, chatID, tgID, msg, st)

	default:
		b.send(tgbotapi.NewMessage(chatID, "Выберите раздел кнопками снизу или наберите /help"))
	}
}

func (b *Bot) setPassword(ctx context.Context, chatID, tgID int64, msg *tgbotapi.Message, st *dialog.Item) {
	b.request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID))

	next := strings.TrimSpace(msg.Text)
	if hasOld, _ := st.Payload["has_old"].(bool); hasOld {
		old, rest := splitFirst(next)
		if err := gate.NewBcryptVerifier(b.users, tgID).Verify(ctx, old); err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Текущий пароль неверен. Попробуйте ещё раз или /cancel."))
			return
		}
		next = rest
	}
	hash, err := gate.HashPassword(next)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Пароль слишком короткий: нужно минимум 4 символа."))
		return
	}
	if err := b.users.SetPasswordHash(ctx, tgID, hash); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			b.send(tgbotapi.NewMessage(chatID, "Сначала нажмите /start"))
			return
		}
		b.log.Error("save password failed", "tg_id", tgID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Не удалось сохранить пароль"))
		return
	}
	b.clearPrevStep(ctx, chatID)
	b.resetState(ctx, chatID)
	b.log.Info("operator password set", "tg_id", tgID)
	b.send(tgbotapi.NewMessage(chatID, "Пароль сохранён."))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	fromChat := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	tgID := cb.From.ID

	// Общая навигация
	if data == "nav:cancel" {
		b.session(fromChat).gate.Cancel()
		b.resetState(ctx, fromChat)
		b.editTextAndClear(fromChat, msgID, "Операция отменена.")
		b.answerCallback(cb, "Отменено", false)
		return
	}

	if b.operator(ctx, tgID) == nil {
		b.answerCallback(cb, "Сначала нажмите /start", true)
		return
	}

	st, err := b.states.Get(ctx, fromChat)
	if err != nil {
		b.log.Error("load dialog state failed", "chat_id", fromChat, "err", err)
		b.answerCallback(cb, "Ошибка, попробуйте ещё раз", true)
		return
	}
	page, _ := dialog.GetInt(st.Payload, "page")

	if data == "nav:back" {
		b.navBack(ctx, fromChat, tgID, msgID, st, page)
		b.answerCallback(cb, "", false)
		return
	}

	parts := splitCallback(data, 3)
	switch parts[0] {
	case "mat":
		b.materialCallback(ctx, cb, st, parts, page)
	case "inv":
		b.invoiceCallback(ctx, cb, st, parts)
	default:
		b.answerCallback(cb, "", false)
	}
}

func (b *Bot) navBack(ctx context.Context, chatID, tgID int64, msgID int, st *dialog.Item, page int) {
	switch st.State {
	case dialog.StateMatAddName, dialog.StateMatSearch, dialog.StateMatItem:
		b.showList(ctx, chatID, tgID, &msgID, page, false)
	case dialog.StateMatAddUnit, dialog.StateMatAddQty, dialog.StateMatAddSupplier,
		dialog.StateMatAddDate, dialog.StateMatAddDesc, dialog.StateMatAddConfirm:
		b.askAddStep(ctx, chatID, &msgID, prevAddStep[st.State], st.Payload, "")
	case dialog.StateMatStockDelta, dialog.StateMatHist:
		id, _ := dialog.GetString(st.Payload, "mat_id")
		b.showCard(ctx, chatID, tgID, &msgID, id, page, "")
	case dialog.StateGatePassword:
		b.session(chatID).gate.Cancel()
		id, _ := dialog.GetString(st.Payload, "mat_id")
		b.showCard(ctx, chatID, tgID, &msgID, id, page, "")
	case dialog.StateMatEditValue:
		id, _ := dialog.GetString(st.Payload, "mat_id")
		m, err := b.lookup(ctx, b.session(chatID), id)
		if err != nil {
			b.editTextAndClear(chatID, msgID, banner(store.UserMessage(err)))
			b.resetState(ctx, chatID)
			return
		}
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, materialCard(m)+"\n\nЧто изменить?", editFieldKeyboard()))
		b.saveLastStep(ctx, chatID, dialog.StateMatEditPick, dialog.Payload{"mat_id": id}, msgID)
	case dialog.StateInvItem:
		b.showInvoices(ctx, chatID, &msgID)
	case dialog.StateInvPayment:
		number, _ := dialog.GetString(st.Payload, "inv")
		b.showInvoice(ctx, chatID, tgID, &msgID, number, "")
	default:
		b.showList(ctx, chatID, tgID, &msgID, page, false)
	}
}

func (b *Bot) materialCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, parts []string, page int) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	tgID := cb.From.ID
	action := parts[1]
	arg := ""
	if len(parts) > 2 {
		arg = parts[2]
	}

	// изменяющие действия только для admin/editor
	switch action {
	case "add", "stock", "edit", "del", "ef", "ev":
		if !b.canMutate(ctx, tgID) {
			b.answerCallback(cb, "Недостаточно прав", true)
			return
		}
	}

	switch action {
	case "item", "hist", "stock", "edit", "del":
		id, ok := b.ids.decode(arg, snapshotIDs(b.session(chatID).list.Snapshot()))
		if !ok {
			b.answerCallback(cb, "Запись не найдена, обновите список", true)
			return
		}
		arg = id
	}

	alert := ""
	switch action {
	case "noop":
	case "menu":
		b.showList(ctx, chatID, tgID, &msgID, 1, true)
	case "list":
		n, _ := strconv.Atoi(arg)
		b.showList(ctx, chatID, tgID, &msgID, n, false)
	case "refresh":
		b.showList(ctx, chatID, tgID, &msgID, page, true)
	case "sort":
		b.toggleSort(ctx, chatID, tgID, msgID)
	case "search":
		if arg == "clear" {
			b.applySearch(ctx, chatID, tgID, &msgID, "")
		} else {
			b.searchPrompt(ctx, chatID, msgID, page)
		}
	case "export":
		if err := b.exportList(ctx, chatID); err != nil {
			b.log.Error("export materials failed", "err", err)
			alert = store.UserMessage(err)
		}
	case "item":
		b.showCard(ctx, chatID, tgID, &msgID, arg, page, "")
	case "hist":
		alert = b.showHistory(ctx, chatID, msgID, arg, page)
	case "stock":
		m, err := b.lookup(ctx, b.session(chatID), arg)
		if err != nil {
			alert = store.UserMessage(err)
			break
		}
		b.stockPrompt(ctx, chatID, msgID, m, page)
	case "edit":
		alert = b.requestGated(ctx, chatID, msgID, gate.KindEdit, arg, page)
	case "del":
		alert = b.requestGated(ctx, chatID, msgID, gate.KindDelete, arg, page)
	case "ef":
		if !b.askEditValue(ctx, chatID, msgID, st, arg) {
			alert = "Действие устарело"
		}
	case "ev":
		// mat:ev:name:<idx> | mat:ev:unit:<unit>
		if st.State != dialog.StateMatEditValue {
			alert = "Действие устарело"
			break
		}
		b.applyEdit(ctx, chatID, tgID, st, editPickValue(arg))
	case "add":
		ok := true
		kind, val := splitFirst(strings.ReplaceAll(arg, ":", " "))
		switch kind {
		case "":
			b.clearPrevStep(ctx, chatID)
			b.startAdd(ctx, chatID, msgID, page)
		case "name":
			idx, _ := strconv.Atoi(val)
			ok = b.addPickName(ctx, chatID, msgID, st, idx)
		case "unit":
			ok = b.addPickUnit(ctx, chatID, msgID, st, val)
		case "date":
			ok = b.addToday(ctx, chatID, msgID, st)
		case "desc":
			ok = b.addSkipDesc(ctx, chatID, msgID, st)
		case "save":
			alert = b.addSave(ctx, chatID, tgID, msgID, st)
		}
		if !ok {
			alert = "Действие устарело"
		}
	}
	b.answerCallback(cb, alert, alert != "")
}

// editPickValue "name:2" -> "Concrete Stones", "unit:tons" -> "tons".
func editPickValue(arg string) string {
	kind, val, _ := strings.Cut(arg, ":")
	if kind == "name" {
		names := materials.KnownNames()
		if idx, err := strconv.Atoi(val); err == nil && idx >= 0 && idx < len(names) {
			return names[idx]
		}
		return ""
	}
	return val
}

func (b *Bot) invoiceCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, parts []string) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	tgID := cb.From.ID
	arg := ""
	if len(parts) > 2 {
		arg = parts[2]
	}

	alert := ""
	switch parts[1] {
	case "list":
		b.showInvoices(ctx, chatID, &msgID)
	case "item":
		b.showInvoice(ctx, chatID, tgID, &msgID, arg, "")
	case "pay":
		if !b.canMutate(ctx, tgID) {
			alert = "Недостаточно прав"
			break
		}
		alert = b.paymentPrompt(ctx, chatID, msgID, arg)
	case "paycfm":
		if !b.canMutate(ctx, tgID) {
			alert = "Недостаточно прав"
			break
		}
		alert = b.paymentConfirm(ctx, chatID, tgID, msgID, st)
	case "export":
		if err := b.exportInvoice(ctx, chatID, arg); err != nil {
			b.log.Error("export invoice failed", "invoice", arg, "err", err)
			alert = "Не удалось выгрузить счёт"
		}
	}
	b.answerCallback(cb, alert, alert != "")
}
