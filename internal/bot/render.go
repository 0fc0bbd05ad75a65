package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/material-desk/internal/domain/inventory"
	"github.com/Spok95/material-desk/internal/domain/invoice"
	"github.com/Spok95/material-desk/internal/domain/materials"
)

const dateLayout = "2006-01-02"

var sortTitles = map[materials.SortMode]string{
	materials.SortNewest: "сначала новые",
	materials.SortOldest: "сначала старые",
	materials.SortName:   "по названию",
}

var statusTitles = map[invoice.Status]string{
	invoice.StatusUnpaid:  "🔴 не оплачен",
	invoice.StatusPartial: "🟡 оплачен частично",
	invoice.StatusPaid:    "🟢 оплачен",
	invoice.StatusOverdue: "⛔ просрочен",
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format(dateLayout)
}

// materialLabel строка кнопки в списке.
func materialLabel(m materials.Material) string {
	return fmt.Sprintf("%s · %s %s · %s", m.DisplayName(), m.Quantity.String(), m.Unit, formatDate(m.ReceivedDate))
}

type listScreen struct {
	Term    string
	Mode    materials.SortMode
	Page    int
	Pages   int
	Total   int
	Loaded  bool
	Problem string
}

func listText(s listScreen) string {
	var sb strings.Builder
	if s.Problem != "" {
		sb.WriteString(banner(s.Problem))
		sb.WriteString("\n\n")
	}
	if !s.Loaded {
		sb.WriteString("Список материалов ещё не загружен.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Материалы: %d\nСортировка: %s", s.Total, sortTitles[s.Mode])
	if s.Term != "" {
		fmt.Fprintf(&sb, "\nПоиск: «%s»", s.Term)
	}
	if s.Total == 0 {
		if s.Term != "" {
			sb.WriteString("\n\nНичего не найдено.")
		} else {
			sb.WriteString("\n\nСклад пуст.")
		}
		return sb.String()
	}
	fmt.Fprintf(&sb, "\nСтраница %d из %d", s.Page, s.Pages)
	return sb.String()
}

func materialCard(m materials.Material) string {
	desc := m.Description
	if desc == "" {
		desc = "—"
	}
	return fmt.Sprintf(
		"Материал: %s\nКатегория: %s\nКоличество: %s %s\nПоставщик: %s\nДата поступления: %s\nОписание: %s",
		m.DisplayName(), materials.Category(m.Name), m.Quantity.String(), m.Unit,
		m.Supplier, formatDate(m.ReceivedDate), desc,
	)
}

// draftSummary итог формы добавления перед сохранением.
func draftSummary(d materials.Draft) string {
	desc := d.Description
	if desc == "" {
		desc = "—"
	}
	return fmt.Sprintf(
		"Проверьте данные:\nМатериал: %s\nЕдиница: %s\nКоличество: %s\nПоставщик: %s\nДата поступления: %s\nОписание: %s",
		d.Name, d.Unit, d.Quantity.String(), d.Supplier, formatDate(d.ReceivedDate), desc,
	)
}

func invoiceLabel(inv invoice.Invoice, now time.Time) string {
	return fmt.Sprintf("%s · %s · %s", inv.Number, inv.Supplier, statusTitles[inv.Status(now)])
}

func invoiceCard(inv invoice.Invoice, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Счёт %s\nПоставщик: %s\n", inv.Number, inv.Supplier)
	if inv.Address != "" {
		fmt.Fprintf(&sb, "Адрес: %s\n", inv.Address)
	}
	fmt.Fprintf(&sb, "Выставлен: %s, оплатить до: %s\n\n", formatDate(inv.IssueDate), formatDate(inv.DueDate))
	for _, it := range inv.Items {
		fmt.Fprintf(&sb, "• %s — %d %s × %s = %s\n", it.Description, it.Quantity, it.Unit, it.UnitPrice, it.Amount())
	}
	fmt.Fprintf(&sb, "\nСумма: %s\nНалог (%d.%02d%%): %s\nИтого: %s\nОплачено: %s\nОстаток: %s\nСтатус: %s",
		inv.Subtotal(), inv.TaxBP/100, inv.TaxBP%100, inv.Tax(), inv.Total(),
		inv.Paid(), inv.Balance(), statusTitles[inv.Status(now)])
	return sb.String()
}

func movementsText(list []inventory.Movement) string {
	if len(list) == 0 {
		return "Корректировок остатка через бота ещё не было."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "История остатка: %s\n", list[0].MaterialName)
	for _, m := range list {
		qty := m.Qty.String()
		if m.Type == inventory.MoveIn {
			qty = "+" + qty
		}
		fmt.Fprintf(&sb, "\n%s · %s · оператор %d", m.CreatedAt.Format("2006-01-02 15:04"), qty, m.ActorID)
		if m.Note != "" {
			fmt.Fprintf(&sb, " · %s", m.Note)
		}
	}
	return sb.String()
}
