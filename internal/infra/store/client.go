package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Spok95/material-desk/internal/domain/materials"
	"github.com/Spok95/material-desk/internal/infra/logger"
)

const maxBodySize = 8 << 20

// Filters параметры GET /materials. Пустые поля не передаются.
type Filters struct {
	Search   string
	Supplier string
}

func (f Filters) query() url.Values {
	q := url.Values{}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("q", s)
	}
	if s := strings.TrimSpace(f.Supplier); s != "" {
		q.Set("supplier", s)
	}
	return q
}

// Client REST-клиент удалённого хранилища материалов. Повторов нет:
// каждая ошибка возвращается вызывающему один раз.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

func New(baseURL, token string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) List(ctx context.Context, f Filters) ([]materials.Material, error) {
	endpoint := "/materials"
	if q := f.query(); len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	status, body, err := c.do(ctx, "list", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &FetchError{Status: status, Err: errors.New(serverMessage(body, status))}
	}
	items, err := decodeCollection(body)
	if err != nil {
		c.log.Warn("malformed materials payload", "err", err)
		return nil, &FetchError{Status: status, Err: err}
	}
	return items, nil
}

func (c *Client) Get(ctx context.Context, id string) (*materials.Material, error) {
	return c.single(ctx, "get", http.MethodGet, "/materials/"+url.PathEscape(id), nil)
}

func (c *Client) Create(ctx context.Context, d materials.Draft) (*materials.Material, error) {
	return c.single(ctx, "create", http.MethodPost, "/materials", encodeCreate(d))
}

func (c *Client) Update(ctx context.Context, id string, d materials.Draft) (*materials.Material, error) {
	return c.single(ctx, "update", http.MethodPut, "/materials/"+url.PathEscape(id), encodeUpdate(d))
}

func (c *Client) UpdateStock(ctx context.Context, id string, s materials.StockChange) (*materials.Material, error) {
	return c.single(ctx, "update_stock", http.MethodPut, "/materials/"+url.PathEscape(id)+"/stock", encodeStock(s))
}

// Delete тело ответа (подтверждение) не разбирается: достаточно 2xx.
func (c *Client) Delete(ctx context.Context, id string) error {
	status, body, err := c.do(ctx, "delete", http.MethodDelete, "/materials/"+url.PathEscape(id), nil)
	if err != nil {
		return &RemoteError{Op: "delete", Message: "Склад материалов недоступен", Err: err}
	}
	if status < 200 || status > 299 {
		return &RemoteError{Op: "delete", Status: status, Message: serverMessage(body, status)}
	}
	return nil
}

func (c *Client) single(ctx context.Context, op, method, endpoint string, payload any) (*materials.Material, error) {
	status, body, err := c.do(ctx, op, method, endpoint, payload)
	if err != nil {
		return nil, &RemoteError{Op: op, Message: "Склад материалов недоступен", Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &RemoteError{Op: op, Status: status, Message: serverMessage(body, status)}
	}
	m, err := decodeSingle(body)
	if err != nil {
		return nil, &RemoteError{Op: op, Status: status, Message: "Некорректный ответ склада материалов", Err: err}
	}
	return &m, nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(op, "transport_error").Inc()
		c.log.Error("material store request failed", "op", op, "method", method, "endpoint", endpoint, "err", err)
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		requestsTotal.WithLabelValues(op, "transport_error").Inc()
		return 0, nil, fmt.Errorf("read body: %w", err)
	}

	outcome := "ok"
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "http_" + fmt.Sprint(resp.StatusCode)
		c.log.Warn("material store returned error", "op", op, "status", resp.StatusCode)
	} else {
		c.log.Debug("material store request", "op", op, "method", method, "endpoint", endpoint, "status", resp.StatusCode)
	}
	requestsTotal.WithLabelValues(op, outcome).Inc()
	return resp.StatusCode, body, nil
}

// serverMessage достаёт message/error из тела ответа, иначе общий текст.
func serverMessage(body []byte, status int) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if s := strings.TrimSpace(e.Message); s != "" {
			return s
		}
		if s := strings.TrimSpace(e.Error); s != "" {
			return s
		}
	}
	if status == http.StatusNotFound {
		return "Материал не найден"
	}
	return fmt.Sprintf("Склад материалов вернул ошибку (%d)", status)
}
