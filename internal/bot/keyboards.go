package bot

import (
	"fmt"

	"github.com/Spok95/material-desk/internal/domain/invoice"
	"github.com/Spok95/material-desk/internal/domain/materials"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	btnMaterials = "Материалы"
	btnInvoices  = "Счета"
)

func navKeyboard(back bool, cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if back {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "nav:back"))
	}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// mainReplyKeyboard Нижняя панель оператора
func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnMaterials), tgbotapi.NewKeyboardButton(btnInvoices)},
		},
	}
}

// listKeyboard страница списка: записи, листание, поиск/сортировка, действия.
// key превращает id записи в безопасный для callback_data вид.
func listKeyboard(items []materials.Material, s listScreen, canMutate bool, key func(string) string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, m := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(materialLabel(m), "mat:item:"+key(m.ID)),
		))
	}

	if s.Pages > 1 {
		pager := []tgbotapi.InlineKeyboardButton{}
		if s.Page > 1 {
			pager = append(pager, tgbotapi.NewInlineKeyboardButtonData("◀", fmt.Sprintf("mat:list:%d", s.Page-1)))
		}
		pager = append(pager, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", s.Page, s.Pages), "mat:noop"))
		if s.Page < s.Pages {
			pager = append(pager, tgbotapi.NewInlineKeyboardButtonData("▶", fmt.Sprintf("mat:list:%d", s.Page+1)))
		}
		rows = append(rows, pager)
	}

	search := tgbotapi.NewInlineKeyboardButtonData("🔍 Поиск", "mat:search")
	if s.Term != "" {
		search = tgbotapi.NewInlineKeyboardButtonData("✖️ Сбросить поиск", "mat:search:clear")
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		search,
		tgbotapi.NewInlineKeyboardButtonData("↕️ "+sortTitles[s.Mode.Next()], "mat:sort"),
		tgbotapi.NewInlineKeyboardButtonData("🔄", "mat:refresh"),
	))

	actions := []tgbotapi.InlineKeyboardButton{}
	if canMutate {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", "mat:add"))
	}
	actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("📥 Excel", "mat:export"))
	rows = append(rows, actions)
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cardKeyboard(id string, canMutate, history bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if history {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📜 История остатка", "mat:hist:"+id),
		))
	}
	if canMutate {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("± Остаток", "mat:stock:"+id),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить", "mat:edit:"+id),
				tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", "mat:del:"+id),
			),
		)
	}
	rows = append(rows, navKeyboard(true, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// namePickKeyboard фиксированный список названий; prefix "mat:add:name" или "mat:ev:name".
func namePickKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for i, name := range materials.KnownNames() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(name, fmt.Sprintf("%s:%d", prefix, i)),
		))
	}
	rows = append(rows, navKeyboard(true, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

var allUnits = []materials.Unit{
	materials.UnitPacks, materials.UnitCubes, materials.UnitPieces, materials.UnitRolls, materials.UnitTons,
}

// unitKeyboard подсказанная единица отмечена галочкой.
func unitKeyboard(prefix string, suggested materials.Unit) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	for _, u := range allUnits {
		label := string(u)
		if u == suggested {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%s", prefix, u)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row[:3],
		row[3:],
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func skipKeyboard(data, label string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func addConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Сохранить", "mat:add:save"),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

var editFields = []struct {
	Key   string
	Title string
}{
	{"name", "Название"},
	{"unit", "Единица"},
	{"qty", "Количество"},
	{"supplier", "Поставщик"},
	{"date", "Дата поступления"},
	{"desc", "Описание"},
}

func editFieldKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for i := 0; i < len(editFields); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{}
		for _, f := range editFields[i:min(i+2, len(editFields))] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(f.Title, "mat:ef:"+f.Key))
		}
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func invoiceListKeyboard(list []invoice.Invoice, labels []string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for i, inv := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(labels[i], "inv:item:"+inv.Number),
		))
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func invoiceCardKeyboard(number string, payable bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if payable {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("💳 Внести оплату", "inv:pay:"+number))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("📥 Excel", "inv:export:"+number))
	return tgbotapi.NewInlineKeyboardMarkup(row, navKeyboard(true, true).InlineKeyboard[0])
}

func paymentConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить оплату", "inv:paycfm"),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}
