package bot

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Spok95/material-desk/internal/dialog"
	"github.com/Spok95/material-desk/internal/domain/inventory"
	"github.com/Spok95/material-desk/internal/domain/invoice"
	"github.com/Spok95/material-desk/internal/domain/materials"
	"github.com/Spok95/material-desk/internal/domain/users"
	"github.com/Spok95/material-desk/internal/infra/logger"
	"github.com/Spok95/material-desk/internal/infra/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const chat int64 = 42

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type fakeAPI struct {
	mu       sync.Mutex
	next     int
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: 1000 + f.next}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts всё, что бот написал или переписал, по порядку.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		case tgbotapi.DocumentConfig:
			out = append(out, m.Caption)
		}
	}
	return out
}

func (f *fakeAPI) lastText() string {
	t := f.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

func (f *fakeAPI) lastAlert() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if cb, ok := f.requests[i].(tgbotapi.CallbackConfig); ok {
			return cb.Text
		}
	}
	return ""
}

// callbacks callback_data всех кнопок последней клавиатуры.
func (f *fakeAPI) callbacks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		var kb *tgbotapi.InlineKeyboardMarkup
		switch m := f.sent[i].(type) {
		case tgbotapi.MessageConfig:
			if k, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
				kb = &k
			}
		case tgbotapi.EditMessageTextConfig:
			kb = m.ReplyMarkup
		}
		if kb == nil {
			continue
		}
		var out []string
		for _, row := range kb.InlineKeyboard {
			for _, btn := range row {
				if btn.CallbackData != nil {
					out = append(out, *btn.CallbackData)
				}
			}
		}
		return out
	}
	return nil
}

func (f *fakeAPI) documents() []tgbotapi.DocumentConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeAPI) deleted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.requests {
		if _, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			n++
		}
	}
	return n
}

type memStates struct {
	mu sync.Mutex
	m  map[int64]dialog.Item
}

func (s *memStates) Get(_ context.Context, chatID int64) (*dialog.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.m[chatID]
	if !ok {
		return &dialog.Item{ChatID: chatID, State: dialog.StateIdle, Payload: dialog.Payload{}}, nil
	}
	it.Payload = it.Payload.Clone()
	return &it, nil
}

func (s *memStates) Set(_ context.Context, chatID int64, state dialog.State, payload dialog.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[chatID] = dialog.Item{ChatID: chatID, State: state, Payload: payload.Clone()}
	return nil
}

func (s *memStates) Reset(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, chatID)
	return nil
}

func (s *memStates) state(chatID int64) dialog.State {
	it, _ := s.Get(context.Background(), chatID)
	return it.State
}

type fakeOperators struct {
	mu sync.Mutex
	m  map[int64]*users.User
}

func (o *fakeOperators) GetByTelegramID(_ context.Context, tgID int64) (*users.User, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	u, ok := o.m[tgID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (o *fakeOperators) UpsertFromTelegram(_ context.Context, tg users.Telegram, role users.Role) (*users.User, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	u, ok := o.m[tg.ID]
	if !ok {
		u = &users.User{ID: int64(len(o.m) + 1), TelegramID: tg.ID}
		o.m[tg.ID] = u
	}
	u.Username, u.FirstName, u.LastName = tg.Username, tg.FirstName, tg.LastName
	if u.Role != users.RoleAdmin {
		u.Role = role
	}
	cp := *u
	return &cp, nil
}

func (o *fakeOperators) SetRole(_ context.Context, tgID int64, role users.Role) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	u, ok := o.m[tgID]
	if !ok {
		return users.ErrNotFound
	}
	u.Role = role
	return nil
}

func (o *fakeOperators) SetPasswordHash(_ context.Context, tgID int64, hash string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	u, ok := o.m[tgID]
	if !ok {
		return users.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (o *fakeOperators) PasswordHash(_ context.Context, tgID int64) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if u, ok := o.m[tgID]; ok {
		return u.PasswordHash, nil
	}
	return "", nil
}

// fakeStore хранилище в памяти с записью вызовов.
type fakeStore struct {
	mu        sync.Mutex
	items     []materials.Material
	seq       int
	created   []materials.Draft
	updated   map[string]materials.Draft
	deleted   []string
	stock     []materials.StockChange
	createErr error
}

func (s *fakeStore) List(_ context.Context, _ store.Filters) ([]materials.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*materials.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.items {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, &store.RemoteError{Op: "get material", Status: 404, Message: "Material not found", Err: store.ErrNotFound}
}

func (s *fakeStore) Create(_ context.Context, d materials.Draft) (*materials.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.seq++
	s.created = append(s.created, d)
	m := materials.Material{
		ID: fmt.Sprintf("m%d", s.seq), Name: d.Name, Unit: d.Unit, Quantity: d.Quantity,
		Supplier: d.Supplier, ReceivedDate: d.ReceivedDate, Description: d.Description,
	}
	s.items = append(s.items, m)
	return &m, nil
}

func (s *fakeStore) Update(_ context.Context, id string, d materials.Draft) (*materials.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.items {
		if m.ID == id {
			s.updated[id] = d
			s.items[i] = materials.Material{
				ID: id, Name: d.Name, Unit: d.Unit, Quantity: d.Quantity,
				Supplier: d.Supplier, ReceivedDate: d.ReceivedDate, Description: d.Description,
			}
			out := s.items[i]
			return &out, nil
		}
	}
	return nil, &store.RemoteError{Op: "update material", Status: 404, Message: "Material not found", Err: store.ErrNotFound}
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.items {
		if m.ID == id {
			s.items = slices.Delete(s.items, i, i+1)
			s.deleted = append(s.deleted, id)
			return nil
		}
	}
	return &store.RemoteError{Op: "delete material", Status: 404, Message: "Material not found", Err: store.ErrNotFound}
}

func (s *fakeStore) UpdateStock(_ context.Context, id string, c materials.StockChange) (*materials.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.items {
		if m.ID == id {
			s.stock = append(s.stock, c)
			s.items[i].Quantity = m.Quantity.Add(c.Delta)
			out := s.items[i]
			return &out, nil
		}
	}
	return nil, &store.RemoteError{Op: "update stock", Status: 404, Message: "Material not found", Err: store.ErrNotFound}
}

type fakeJournal struct {
	mu    sync.Mutex
	moves []inventory.Movement
}

func (j *fakeJournal) Record(_ context.Context, m inventory.Movement) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	m.ID = int64(len(j.moves) + 1)
	m.CreatedAt = fixedNow
	j.moves = append(j.moves, m)
	return nil
}

func (j *fakeJournal) ListByMaterial(_ context.Context, materialID string, limit int) ([]inventory.Movement, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []inventory.Movement
	for i := len(j.moves) - 1; i >= 0 && len(out) < limit; i-- {
		if j.moves[i].MaterialID == materialID {
			out = append(out, j.moves[i])
		}
	}
	return out, nil
}

type harness struct {
	bot    *Bot
	api    *fakeAPI
	store  *fakeStore
	ops    *fakeOperators
	states *memStates
	inv    *invoice.MockRepo
}

func newHarness(role users.Role, items ...materials.Material) *harness {
	h := &harness{
		api:    &fakeAPI{},
		store:  &fakeStore{items: items, updated: map[string]materials.Draft{}},
		ops:    &fakeOperators{m: map[int64]*users.User{chat: {ID: 1, TelegramID: chat, Role: role}}},
		states: &memStates{m: map[int64]dialog.Item{}},
		inv:    invoice.NewMockRepo(),
	}
	h.bot = New(h.api, logger.Discard(), Deps{
		Users:    h.ops,
		States:   h.states,
		Store:    h.store,
		Invoices: h.inv,
		PageSize: 3,
	})
	h.bot.now = func() time.Time { return fixedNow }
	return h
}

func (h *harness) press(data string) {
	h.bot.handleCallback(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chat},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chat}},
		Data:    data,
	})
}

func (h *harness) say(text string) {
	h.bot.onMessage(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 99,
		From:      &tgbotapi.User{ID: chat},
		Chat:      &tgbotapi.Chat{ID: chat},
		Text:      text,
	}})
}

func (h *harness) command(cmd string) {
	name, _, _ := cutCommand(cmd)
	h.bot.onMessage(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 99,
		From:      &tgbotapi.User{ID: chat, UserName: "op"},
		Chat:      &tgbotapi.Chat{ID: chat},
		Text:      cmd,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}})
}

func cutCommand(s string) (string, string, bool) {
	for i, r := range s {
		if r == ' ' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}
