package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/material-desk/internal/dialog"
	"github.com/Spok95/material-desk/internal/domain/invoice"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showInvoices(ctx context.Context, chatID int64, editMsgID *int) {
	list, err := b.invoices.List(ctx)
	if err != nil {
		b.log.Error("list invoices failed", "err", err)
		b.show(chatID, editMsgID, banner("Не удалось загрузить счета"), navKeyboard(false, true))
		return
	}
	if len(list) == 0 {
		b.show(chatID, editMsgID, "Счетов пока нет.", navKeyboard(false, true))
		return
	}
	now := b.now()
	labels := make([]string, len(list))
	for i, inv := range list {
		labels[i] = invoiceLabel(inv, now)
	}
	mid := b.show(chatID, editMsgID, "Счета поставщиков:", invoiceListKeyboard(list, labels))
	b.saveLastStep(ctx, chatID, dialog.StateInvList, dialog.Payload{}, mid)
}

func (b *Bot) showInvoice(ctx context.Context, chatID, tgID int64, editMsgID *int, number, note string) {
	inv, err := b.invoices.Get(ctx, number)
	if err != nil {
		text := banner("Не удалось загрузить счёт")
		if errors.Is(err, invoice.ErrNotFound) {
			text = "Счёт не найден"
		}
		mid := b.show(chatID, editMsgID, text, navKeyboard(true, true))
		b.saveLastStep(ctx, chatID, dialog.StateInvItem, dialog.Payload{}, mid)
		return
	}
	text := invoiceCard(*inv, b.now())
	if note != "" {
		text = note + "\n\n" + text
	}
	payable := inv.Balance() > 0 && b.canMutate(ctx, tgID)
	mid := b.show(chatID, editMsgID, text, invoiceCardKeyboard(inv.Number, payable))
	b.saveLastStep(ctx, chatID, dialog.StateInvItem, dialog.Payload{"inv": inv.Number}, mid)
}

func (b *Bot) paymentPrompt(ctx context.Context, chatID int64, msgID int, number string) string {
	inv, err := b.invoices.Get(ctx, number)
	if err != nil {
		return "Счёт не найден"
	}
	if inv.Balance() <= 0 {
		return "Счёт уже оплачен"
	}
	b.editTextWithNav(chatID, msgID, fmt.Sprintf(
		"Счёт %s, остаток %s.\nВведите сумму цифрами: две последние цифры — центы (12345 → 123.45).\nМожно и с точкой: 123.45",
		inv.Number, inv.Balance()))
	b.saveLastStep(ctx, chatID, dialog.StateInvPayment, dialog.Payload{"inv": inv.Number}, msgID)
	return ""
}

// parsePaymentInput "12345" -> 123.45 (ввод центами), "123.45"/"123,45"/"#12345" через ParseCents.
func parsePaymentInput(text string) (invoice.Cents, string, error) {
	text = strings.TrimSpace(text)
	if strings.ContainsAny(text, ".,#") {
		c, err := invoice.ParseCents(text)
		if err != nil {
			return 0, "", err
		}
		return c, c.String(), nil
	}
	c := invoice.FromDigits(text)
	if c <= 0 {
		return 0, "", invoice.ErrInvalidAmount
	}
	return c, invoice.FormatCents(text), nil
}

func (b *Bot) paymentInput(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	number, _ := dialog.GetString(st.Payload, "inv")
	amount, shown, err := parsePaymentInput(text)
	if err != nil || amount <= 0 {
		b.send(tgbotapi.NewMessage(chatID, "Некорректная сумма. Пример: 12345 (= 123.45) или 123.45"))
		return
	}
	p := st.Payload.Clone()
	p["amount"] = float64(amount)
	b.clearPrevStep(ctx, chatID)
	mid := b.sendStep(chatID, fmt.Sprintf("Оплата по счёту %s: %s", number, shown), ptr(paymentConfirmKeyboard()))
	b.saveLastStep(ctx, chatID, dialog.StateInvPayment, p, mid)
}

func (b *Bot) paymentConfirm(ctx context.Context, chatID, tgID int64, msgID int, st *dialog.Item) string {
	number, _ := dialog.GetString(st.Payload, "inv")
	amount, ok := dialog.GetInt(st.Payload, "amount")
	if st.State != dialog.StateInvPayment || !ok {
		return "Сначала введите сумму"
	}
	inv, err := b.invoices.AddPayment(ctx, number, invoice.Payment{
		Date:   b.now(),
		Amount: invoice.Cents(amount),
		Method: "telegram",
		Note:   fmt.Sprintf("оператор %d", tgID),
	})
	switch {
	case errors.Is(err, invoice.ErrInvalidAmount):
		p := st.Payload.Clone()
		delete(p, "amount")
		b.editTextWithNav(chatID, msgID, "Сумма должна быть больше нуля и не больше остатка по счёту. Введите другую сумму.")
		b.saveLastStep(ctx, chatID, dialog.StateInvPayment, p, msgID)
		return ""
	case err != nil:
		b.log.Error("add payment failed", "invoice", number, "err", err)
		return "Не удалось провести оплату"
	}
	b.log.Info("payment recorded", "invoice", number, "amount", invoice.Cents(amount).String(), "tg_id", tgID)
	b.showInvoice(ctx, chatID, tgID, &msgID, inv.Number, fmt.Sprintf("✅ Оплата %s принята", invoice.Cents(amount)))
	return ""
}

func (b *Bot) exportInvoice(ctx context.Context, chatID int64, number string) error {
	inv, err := b.invoices.Get(ctx, number)
	if err != nil {
		return err
	}
	data, err := invoice.ExportXLSX(*inv)
	if err != nil {
		return fmt.Errorf("export invoice: %w", err)
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  inv.Number + ".xlsx",
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("Счёт %s", inv.Number)
	if b.links != nil {
		doc.Caption += "\nСсылка для скачивания: " + b.links.ExportURL(inv.Number)
	}
	b.send(doc)
	return nil
}
