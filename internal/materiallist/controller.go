// Package materiallist держит текущий список материалов для одного окна
// (поиск, сортировка, страницы) и перезагружает его целиком после каждой
// успешной мутации. Источник истины: удалённое хранилище.
package materiallist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/Spok95/material-desk/internal/domain/materials"
	"github.com/Spok95/material-desk/internal/infra/logger"
	"github.com/Spok95/material-desk/internal/infra/store"
)

// ErrStaleLoad ответ пришёл позже более нового запроса и был отброшен.
var ErrStaleLoad = errors.New("stale materials load discarded")

type Store interface {
	List(ctx context.Context, f store.Filters) ([]materials.Material, error)
	Get(ctx context.Context, id string) (*materials.Material, error)
	Create(ctx context.Context, d materials.Draft) (*materials.Material, error)
	Update(ctx context.Context, id string, d materials.Draft) (*materials.Material, error)
	Delete(ctx context.Context, id string) error
	UpdateStock(ctx context.Context, id string, s materials.StockChange) (*materials.Material, error)
}

type Option func(*Controller)

func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

type Controller struct {
	store    Store
	log      *slog.Logger
	pageSize int

	mu       sync.Mutex
	term     string
	mode     materials.SortMode
	supplier string
	view     []materials.Material
	loaded   bool
	issued   uint64 // последний выданный номер запроса
	applied  uint64 // номер запроса, чей результат сейчас в view
}

func New(s Store, opts ...Option) *Controller {
	c := &Controller{
		store:    s,
		log:      logger.Discard(),
		pageSize: materials.PageSize,
		mode:     materials.SortNewest,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Load забирает всю коллекцию, сортирует, фильтрует и сохраняет как текущий вид.
// При ошибке предыдущий вид не трогается.
func (c *Controller) Load(ctx context.Context) ([]materials.Material, error) {
	c.mu.Lock()
	c.issued++
	token := c.issued
	term, mode, supplier := c.term, c.mode, c.supplier
	c.mu.Unlock()

	items, err := c.store.List(ctx, store.Filters{Supplier: supplier})

	c.mu.Lock()
	defer c.mu.Unlock()
	if token < c.applied {
		c.log.Debug("discarding stale materials load", "token", token, "applied", c.applied)
		return nil, ErrStaleLoad
	}
	if err != nil {
		c.log.Warn("materials load failed", "err", err)
		return nil, fmt.Errorf("load materials: %w", err)
	}

	c.view = materials.Filter(materials.Sort(items, mode), term)
	c.applied = token
	c.loaded = true
	c.log.Debug("materials loaded", "total", len(items), "visible", len(c.view), "term", term, "sort", mode)
	return slices.Clone(c.view), nil
}

func (c *Controller) SetSearchTerm(ctx context.Context, term string) ([]materials.Material, error) {
	c.mu.Lock()
	c.term = strings.TrimSpace(term)
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *Controller) SetSortMode(ctx context.Context, mode materials.SortMode) ([]materials.Material, error) {
	if _, err := materials.ParseSortMode(string(mode)); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetSupplier фильтр на стороне хранилища (GET /materials?supplier=...).
func (c *Controller) SetSupplier(ctx context.Context, supplier string) ([]materials.Material, error) {
	c.mu.Lock()
	c.supplier = strings.TrimSpace(supplier)
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *Controller) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term
}

func (c *Controller) SortMode() materials.SortMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Snapshot копия текущего вида.
func (c *Controller) Snapshot() []materials.Material {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.view)
}

func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.view)
}

func (c *Controller) Page(n int) []materials.Material {
	c.mu.Lock()
	defer c.mu.Unlock()
	return materials.Page(c.view, n, c.pageSize)
}

func (c *Controller) PageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return materials.PageCount(len(c.view), c.pageSize)
}

// Find ищет запись в текущем виде (без обращения к хранилищу).
func (c *Controller) Find(id string) (materials.Material, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.view {
		if m.ID == id {
			return m, true
		}
	}
	return materials.Material{}, false
}

// Get свежая запись из хранилища для карточки.
func (c *Controller) Get(ctx context.Context, id string) (*materials.Material, error) {
	return c.store.Get(ctx, id)
}

func (c *Controller) Create(ctx context.Context, d materials.Draft) (*materials.Material, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	m, err := c.store.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	return m, c.refresh(ctx)
}

func (c *Controller) Update(ctx context.Context, id string, d materials.Draft) (*materials.Material, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	m, err := c.store.Update(ctx, id, d)
	if err != nil {
		return nil, err
	}
	return m, c.refresh(ctx)
}

func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	return c.refresh(ctx)
}

func (c *Controller) UpdateStock(ctx context.Context, id string, s materials.StockChange) (*materials.Material, error) {
	if s.Delta.IsZero() {
		return nil, fmt.Errorf("%w: delta must not be zero", materials.ErrInvalidQuantity)
	}
	m, err := c.store.UpdateStock(ctx, id, s)
	if err != nil {
		return nil, err
	}
	return m, c.refresh(ctx)
}

// refresh полная перезагрузка после мутации. Отброшенный устаревший ответ
// ошибкой не считается: более новый запрос уже обновил вид.
func (c *Controller) refresh(ctx context.Context) error {
	if _, err := c.Load(ctx); err != nil && !errors.Is(err, ErrStaleLoad) {
		return err
	}
	return nil
}
