package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Spok95/material-desk/internal/dialog"
	"github.com/Spok95/material-desk/internal/domain/inventory"
	"github.com/Spok95/material-desk/internal/domain/invoice"
	"github.com/Spok95/material-desk/internal/domain/users"
	"github.com/Spok95/material-desk/internal/gate"
	"github.com/Spok95/material-desk/internal/materiallist"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API часть *tgbotapi.BotAPI, которой пользуется бот.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type StateStore interface {
	Get(ctx context.Context, chatID int64) (*dialog.Item, error)
	Set(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) error
	Reset(ctx context.Context, chatID int64) error
}

type Operators interface {
	GetByTelegramID(ctx context.Context, tgID int64) (*users.User, error)
	UpsertFromTelegram(ctx context.Context, tg users.Telegram, role users.Role) (*users.User, error)
	SetRole(ctx context.Context, tgID int64, role users.Role) error
	SetPasswordHash(ctx context.Context, tgID int64, hash string) error
	PasswordHash(ctx context.Context, tgID int64) (string, error)
}

type Invoices interface {
	List(ctx context.Context) ([]invoice.Invoice, error)
	Get(ctx context.Context, number string) (*invoice.Invoice, error)
	AddPayment(ctx context.Context, number string, p invoice.Payment) (*invoice.Invoice, error)
}

// Journal локальная история корректировок остатка.
type Journal interface {
	Record(ctx context.Context, m inventory.Movement) error
	ListByMaterial(ctx context.Context, materialID string, limit int) ([]inventory.Movement, error)
}

// ExportLinks ссылка на скачивание счёта с HTTP-сервера.
type ExportLinks interface {
	ExportURL(number string) string
}

type Deps struct {
	Users     Operators
	States    StateStore
	Store     materiallist.Store
	Invoices  Invoices
	Journal   Journal
	Links     ExportLinks
	AdminChat int64
	PageSize  int
}

type Bot struct {
	api       API
	log       *slog.Logger
	users     Operators
	states    StateStore
	store     materiallist.Store
	invoices  Invoices
	journal   Journal
	links     ExportLinks
	adminChat int64
	pageSize  int
	now       func() time.Time
	ids       *callbackIDs

	mu       sync.Mutex
	sessions map[int64]*session
}

// session на чат: свой список (поиск/сортировка/страницы) и свой шлюз подтверждения.
type session struct {
	list *materiallist.Controller
	gate *gate.Gate
}

func New(api API, log *slog.Logger, d Deps) *Bot {
	return &Bot{
		api:       api,
		log:       log,
		users:     d.Users,
		states:    d.States,
		store:     d.Store,
		invoices:  d.Invoices,
		journal:   d.Journal,
		links:     d.Links,
		adminChat: d.AdminChat,
		pageSize:  d.PageSize,
		now:       time.Now,
		ids:       newCallbackIDs(),
		sessions:  map[int64]*session{},
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	b.handleCallback(ctx, upd.CallbackQuery)
}

// session в личном чате chatID совпадает с telegram id оператора,
// по нему же сверяется пароль.
func (b *Bot) session(chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[chatID]; ok {
		return s
	}
	s := &session{
		list: materiallist.New(b.store,
			materiallist.WithPageSize(b.pageSize),
			materiallist.WithLogger(b.log.With("chat_id", chatID)),
		),
	}
	s.gate = gate.New(gate.NewBcryptVerifier(b.users, chatID), &executor{b: b, chatID: chatID, s: s})
	b.sessions[chatID] = s
	return s
}

// operator профиль оператора; nil, если он ещё не нажимал /start.
func (b *Bot) operator(ctx context.Context, tgID int64) *users.User {
	u, err := b.users.GetByTelegramID(ctx, tgID)
	if err != nil {
		b.log.Error("load operator failed", "tg_id", tgID, "err", err)
		return nil
	}
	return u
}

func (b *Bot) canMutate(ctx context.Context, tgID int64) bool {
	u := b.operator(ctx, tgID)
	return u != nil && u.Role.CanMutate()
}
