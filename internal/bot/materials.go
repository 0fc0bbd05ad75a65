package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/material-desk/internal/dialog"
	"github.com/Spok95/material-desk/internal/domain/inventory"
	"github.com/Spok95/material-desk/internal/domain/materials"
	"github.com/Spok95/material-desk/internal/infra/store"
	"github.com/Spok95/material-desk/internal/materiallist"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func clampPage(page, pages int) int {
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// loadProblem текст баннера; устаревший ответ ошибкой не считается.
func loadProblem(err error) string {
	if err == nil || errors.Is(err, materiallist.ErrStaleLoad) {
		return ""
	}
	return store.UserMessage(err)
}

// showList перезагружает список при reload или если он ещё не загружен.
func (b *Bot) showList(ctx context.Context, chatID, tgID int64, editMsgID *int, page int, reload bool) {
	s := b.session(chatID)
	var err error
	if reload || !s.list.Loaded() {
		_, err = s.list.Load(ctx)
	}
	b.renderList(ctx, chatID, tgID, editMsgID, page, err)
}

// renderList рисует текущий вид. При ошибке загрузки показывается баннер,
// а предыдущий вид (если был) остаётся на экране.
func (b *Bot) renderList(ctx context.Context, chatID, tgID int64, editMsgID *int, page int, loadErr error) {
	s := b.session(chatID)
	pages := s.list.PageCount()
	page = clampPage(page, pages)
	scr := listScreen{
		Term:    s.list.SearchTerm(),
		Mode:    s.list.SortMode(),
		Page:    page,
		Pages:   pages,
		Total:   s.list.Len(),
		Loaded:  s.list.Loaded(),
		Problem: loadProblem(loadErr),
	}

	var kb tgbotapi.InlineKeyboardMarkup
	if scr.Loaded {
		kb = listKeyboard(s.list.Page(page), scr, b.canMutate(ctx, tgID), b.ids.encode)
	} else {
		kb = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Повторить", "mat:refresh")),
			navKeyboard(false, true).InlineKeyboard[0],
		)
	}
	mid := b.show(chatID, editMsgID, listText(scr), kb)
	b.saveLastStep(ctx, chatID, dialog.StateMatList, dialog.Payload{"page": float64(page)}, mid)
}

func (b *Bot) searchPrompt(ctx context.Context, chatID int64, msgID int, page int) {
	b.editTextWithNav(chatID, msgID, "Введите строку поиска (название, поставщик или описание):")
	b.saveLastStep(ctx, chatID, dialog.StateMatSearch, dialog.Payload{"page": float64(page)}, msgID)
}

func (b *Bot) applySearch(ctx context.Context, chatID, tgID int64, editMsgID *int, term string) {
	_, err := b.session(chatID).list.SetSearchTerm(ctx, term)
	b.renderList(ctx, chatID, tgID, editMsgID, 1, err)
}

func (b *Bot) toggleSort(ctx context.Context, chatID, tgID int64, msgID int) {
	s := b.session(chatID)
	_, err := s.list.SetSortMode(ctx, s.list.SortMode().Next())
	b.renderList(ctx, chatID, tgID, &msgID, 1, err)
}

// lookup запись из текущего вида, иначе из хранилища.
func (b *Bot) lookup(ctx context.Context, s *session, id string) (materials.Material, error) {
	if m, ok := s.list.Find(id); ok {
		return m, nil
	}
	m, err := s.list.Get(ctx, id)
	if err != nil {
		return materials.Material{}, err
	}
	return *m, nil
}

func (b *Bot) showCard(ctx context.Context, chatID, tgID int64, editMsgID *int, id string, page int, note string) {
	s := b.session(chatID)
	m, err := b.lookup(ctx, s, id)
	if err != nil {
		text := banner(store.UserMessage(err))
		if errors.Is(err, store.ErrNotFound) {
			text = "Материал не найден: возможно, он уже удалён."
		}
		mid := b.show(chatID, editMsgID, text, navKeyboard(true, true))
		b.saveLastStep(ctx, chatID, dialog.StateMatItem, dialog.Payload{"page": float64(page)}, mid)
		return
	}
	b.renderCard(ctx, chatID, tgID, editMsgID, m, page, note)
}

func (b *Bot) renderCard(ctx context.Context, chatID, tgID int64, editMsgID *int, m materials.Material, page int, note string) {
	text := materialCard(m)
	if note != "" {
		text = note + "\n\n" + text
	}
	mid := b.show(chatID, editMsgID, text, cardKeyboard(b.ids.encode(m.ID), b.canMutate(ctx, tgID), b.journal != nil))
	b.saveLastStep(ctx, chatID, dialog.StateMatItem, dialog.Payload{"mat_id": m.ID, "page": float64(page)}, mid)
}

// exportList выгружает текущий вид (с учётом поиска и сортировки) в Excel.
func (b *Bot) exportList(ctx context.Context, chatID int64) error {
	s := b.session(chatID)
	if !s.list.Loaded() {
		if _, err := s.list.Load(ctx); err != nil {
			return err
		}
	}
	items := s.list.Snapshot()
	data, err := materials.ExportXLSX(items)
	if err != nil {
		return fmt.Errorf("export materials: %w", err)
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("materials_%s.xlsx", b.now().Format("20060102_150405")),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("Выгружено материалов: %d", len(items))
	if term := s.list.SearchTerm(); term != "" {
		doc.Caption += fmt.Sprintf(" (поиск «%s»)", term)
	}
	b.send(doc)
	return nil
}

func (b *Bot) stockPrompt(ctx context.Context, chatID int64, msgID int, m materials.Material, page int) {
	text := materialCard(m) + "\n\nВведите изменение остатка: +10 приход, -3 списание. Через пробел можно добавить комментарий."
	b.editTextWithNav(chatID, msgID, text)
	b.saveLastStep(ctx, chatID, dialog.StateMatStockDelta, dialog.Payload{"mat_id": m.ID, "page": float64(page)}, msgID)
}

// applyStock разбирает "+5 комментарий" и отправляет корректировку.
func (b *Bot) applyStock(ctx context.Context, chatID, tgID int64, st *dialog.Item, text string) {
	id, _ := dialog.GetString(st.Payload, "mat_id")
	page, _ := dialog.GetInt(st.Payload, "page")

	change, err := parseStockInput(text)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Нужно число со знаком, например +10 или -2,5. Попробуйте ещё раз."))
		return
	}

	s := b.session(chatID)
	m, err := s.list.UpdateStock(ctx, id, change)
	b.clearPrevStep(ctx, chatID)
	if m == nil {
		b.log.Warn("stock update failed", "mat_id", id, "err", err)
		b.showCard(ctx, chatID, tgID, nil, id, page, banner(store.UserMessage(err)))
		return
	}
	if b.journal != nil {
		err := b.journal.Record(ctx, inventory.Movement{
			ActorID:      tgID,
			MaterialID:   m.ID,
			MaterialName: m.Name,
			Qty:          change.Delta,
			Type:         inventory.TypeFor(change.Delta),
			Note:         change.Note,
		})
		if err != nil {
			b.log.Warn("journal record failed", "mat_id", m.ID, "err", err)
		}
	}
	note := fmt.Sprintf("✅ Остаток изменён на %s", change.Delta.String())
	if p := loadProblem(err); p != "" {
		note += "\n" + banner(p)
	}
	b.renderCard(ctx, chatID, tgID, nil, *m, page, note)
}

func parseStockInput(text string) (materials.StockChange, error) {
	raw, note := splitFirst(text)
	delta, err := materials.ParseDelta(raw)
	if err != nil {
		return materials.StockChange{}, err
	}
	return materials.StockChange{Delta: delta, Note: note}, nil
}

func today(now func() time.Time) time.Time {
	return materials.Day(now())
}

const historyLimit = 10

func (b *Bot) showHistory(ctx context.Context, chatID int64, msgID int, id string, page int) string {
	if b.journal == nil {
		return "История недоступна"
	}
	list, err := b.journal.ListByMaterial(ctx, id, historyLimit)
	if err != nil {
		b.log.Error("journal list failed", "mat_id", id, "err", err)
		return "Не удалось загрузить историю"
	}
	b.editTextWithNav(chatID, msgID, movementsText(list))
	b.saveLastStep(ctx, chatID, dialog.StateMatHist, dialog.Payload{"mat_id": id, "page": float64(page)}, msgID)
	return ""
}
