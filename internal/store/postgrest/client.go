// Package postgrest implements the store port against the hosted
// relational backend: two tables (categorias, transacciones) plus one
// server-side aggregation routine, all reached through a PostgREST-style
// REST and RPC interface.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
	"gastos/internal/store"
)

const (
	defaultTimeout = 10 * time.Second

	tableCategories   = "categorias"
	tableTransactions = "transacciones"
	rpcMonthDetails   = "get_transactions_details"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	timeout time.Duration
}

// Ensure interface conformance
var _ store.Store = (*Client)(nil)

// New creates a client for the hosted store. baseURL is the API root
// (without the /rest/v1 prefix); apiKey is sent as both the apikey header
// and a bearer token.
func New(baseURL, apiKey string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("missing store URL")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing store API key")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid store URL: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    newPooledHTTPClient(),
		timeout: defaultTimeout,
	}, nil
}

// newPooledHTTPClient creates an HTTP client with connection pooling and
// explicit timeouts so a stalled backend cannot hang a user action forever.
func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

// Wire rows use the backend's column names exactly.
type (
	categoryRow struct {
		ID   int64  `json:"id,omitempty"`
		Name string `json:"nombre"`
		Type string `json:"tipo_gasto"`
	}

	transactionRow struct {
		ID          int64      `json:"id,omitempty"`
		Date        string     `json:"fecha"`
		Amount      wireAmount `json:"monto"`
		CategoryID  int64      `json:"id_categoria"`
		Description string     `json:"descripcion"`
	}

	reportRow struct {
		ID           int64      `json:"id"`
		Date         string     `json:"fecha"`
		Amount       wireAmount `json:"monto"`
		CategoryName string     `json:"categoria_nombre"`
		Type         string     `json:"tipo_gasto"`
	}

	monthRangeParams struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}

	// apiError is the backend's error envelope.
	apiError struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
)

// wireAmount tolerates numeric columns serialized as either JSON numbers
// or strings; both decode to exact cents.
type wireAmount struct {
	Cents int64
}

func (a wireAmount) MarshalJSON() ([]byte, error) {
	return []byte(core.FormatCentsDecimal(a.Cents)), nil
}

func (a *wireAmount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		a.Cents = 0
		return nil
	}
	cents, err := core.ParseAmountToCents(s)
	if err != nil {
		return fmt.Errorf("parse monto %q: %w", s, err)
	}
	a.Cents = cents
	return nil
}

func (c *Client) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validation failed: %w", err)
	}
	row := transactionRow{
		Date:        t.Date.ISO(),
		Amount:      wireAmount{Cents: t.Amount.Cents},
		CategoryID:  t.CategoryID,
		Description: t.Description,
	}
	var created []transactionRow
	if err := c.do(ctx, http.MethodPost, "/rest/v1/"+tableTransactions, nil, row, &created); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	if len(created) == 0 {
		return core.Transaction{}, errors.New("insert transaction: empty representation")
	}
	out := t
	out.ID = created[0].ID
	return out, nil
}

func (c *Client) ListMonth(ctx context.Context, month, year int) ([]core.ReportEntry, error) {
	start, end, err := core.MonthRange(month, year)
	if err != nil {
		return nil, err
	}
	params := monthRangeParams{StartDate: start.ISO(), EndDate: end.ISO()}
	var rows []reportRow
	if err := c.do(ctx, http.MethodPost, "/rest/v1/rpc/"+rpcMonthDetails, nil, params, &rows); err != nil {
		return nil, fmt.Errorf("month details rpc: %w", err)
	}
	entries := make([]core.ReportEntry, len(rows))
	for i, r := range rows {
		d, err := core.ParseISODate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r.ID, err)
		}
		entries[i] = core.ReportEntry{
			ID:           r.ID,
			Date:         d,
			Amount:       core.Money{Cents: r.Amount.Cents},
			CategoryName: r.CategoryName,
			Type:         core.ExpenseType(r.Type),
		}
	}
	return entries, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "nombre.asc")
	var rows []categoryRow
	if err := c.do(ctx, http.MethodGet, "/rest/v1/"+tableCategories, query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	cats := make([]core.Category, len(rows))
	for i, r := range rows {
		cats[i] = core.Category{ID: r.ID, Name: r.Name, Type: core.ExpenseType(r.Type)}
	}
	return cats, nil
}

func (c *Client) AddCategory(ctx context.Context, name string, typ core.ExpenseType) (core.Category, error) {
	cat := core.Category{Name: name, Type: typ}
	if err := cat.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validation failed: %w", err)
	}
	var created []categoryRow
	row := categoryRow{Name: name, Type: string(typ)}
	if err := c.do(ctx, http.MethodPost, "/rest/v1/"+tableCategories, nil, row, &created); err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	if len(created) == 0 {
		return core.Category{}, errors.New("insert category: empty representation")
	}
	return core.Category{
		ID:   created[0].ID,
		Name: created[0].Name,
		Type: core.ExpenseType(created[0].Type),
	}, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	query := url.Values{}
	query.Set("id", "eq."+strconv.FormatInt(id, 10))
	var removed []transactionRow
	if err := c.do(ctx, http.MethodDelete, "/rest/v1/"+tableTransactions, query, nil, &removed); err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return len(removed) > 0, nil
}

// do issues one request against the backend and decodes the JSON response
// into out. Mutations ask for the created/removed representation so callers
// can observe what actually happened.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost && !strings.Contains(path, "/rpc/") || method == http.MethodDelete {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.asStoreError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// asStoreError maps the backend's error envelope onto the store sentinels
// where the constraint is recognizable; the backend's message is preserved
// verbatim either way.
func (c *Client) asStoreError(status int, raw []byte) error {
	var e apiError
	_ = json.Unmarshal(raw, &e)
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	switch {
	case e.Code == "23505" || status == http.StatusConflict:
		return fmt.Errorf("%w: %s", store.ErrDuplicateCategory, msg)
	case e.Code == "23503":
		return fmt.Errorf("%w: %s", store.ErrUnknownCategory, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", store.ErrNotFound, msg)
	default:
		return fmt.Errorf("store error (status %d): %s", status, msg)
	}
}
