package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/offbeat-studio/tradegate/internal/domain"
)

// Compile-time interface check.
var _ Broker = (*SinopacBroker)(nil)

// SinopacBroker implements the Broker interface against the Sinopac trading
// gateway, a JSON-over-HTTP service in front of the vendor's trading API.
// The gateway schema is not under our control, so every response passes
// through exactly one translation function with deterministic defaults.
type SinopacBroker struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// NewSinopacBroker creates a SinopacBroker for the given gateway base URL.
func NewSinopacBroker(baseURL string) *SinopacBroker {
	return &SinopacBroker{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns "sinopac".
func (b *SinopacBroker) Name() string { return "sinopac" }

// SharesPerLot returns the Taiwan-market lot size.
func (b *SinopacBroker) SharesPerLot() int { return domain.SharesPerLot }

// ---------------------------------------------------------------------------
// Wire types — the gateway's schema, kept separate from domain types
// ---------------------------------------------------------------------------

type sinopacAccount struct {
	AccountID   string `json:"account_id"`
	BrokerID    string `json:"broker_id"`
	AccountType string `json:"account_type"`
	Signed      bool   `json:"signed"`
	Username    string `json:"username"`
}

type sinopacLoginResponse struct {
	Token    string           `json:"token"`
	Accounts []sinopacAccount `json:"accounts"`
}

type sinopacContract struct {
	Code     string `json:"code"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
}

type sinopacSnapshot struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Close    float64 `json:"close"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Volume   int64   `json:"volume"`
	BidPrice float64 `json:"bid_price"`
	AskPrice float64 `json:"ask_price"`
	Ts       string  `json:"ts"`
}

type sinopacKbar struct {
	Ts     string  `json:"ts"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

type sinopacOrder struct {
	ID       string  `json:"id"`
	Code     string  `json:"code"`
	Action   string  `json:"action"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	Type     string  `json:"order_type"`
	Status   string  `json:"status"`
	Ts       string  `json:"ts"`
}

type sinopacPosition struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Quantity    int64   `json:"quantity"`
	YdQuantity  int64   `json:"yd_quantity"`
	Price       float64 `json:"price"`
	LastPrice   float64 `json:"last_price"`
	Pnl         float64 `json:"pnl"`
	RealizedPnl float64 `json:"realized_pnl"`
}

type sinopacBalance struct {
	AccountID     string  `json:"account_id"`
	Currency      string  `json:"currency"`
	AccBalance    float64 `json:"acc_balance"`
	Available     float64 `json:"available_balance"`
	MarginUsed    float64 `json:"margin_used"`
	TotalBalance  float64 `json:"total_balance"`
	UnrealizedPnl float64 `json:"unrealized_pnl"`
	RealizedPnl   float64 `json:"realized_pnl"`
}

type sinopacError struct {
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Translation — one function per resource, deterministic defaults
// ---------------------------------------------------------------------------

func (a sinopacAccount) toDomain() domain.Account {
	return domain.Account{
		AccountID:   a.AccountID,
		BrokerID:    a.BrokerID,
		AccountType: a.AccountType,
		Signed:      a.Signed,
		Username:    a.Username,
	}
}

func (c sinopacContract) toDomain() domain.Contract {
	out := domain.Contract{
		Code:     c.Code,
		Symbol:   c.Symbol,
		Name:     c.Name,
		Category: c.Category,
		Exchange: c.Exchange,
		Currency: c.Currency,
	}
	if out.Symbol == "" {
		out.Symbol = out.Code
	}
	if out.Currency == "" {
		out.Currency = "TWD"
	}
	return out
}

func (s sinopacSnapshot) toDomain(code string) *domain.Snapshot {
	return &domain.Snapshot{
		Code:      code,
		Name:      s.Name,
		Close:     s.Close,
		Open:      s.Open,
		High:      s.High,
		Low:       s.Low,
		Volume:    s.Volume,
		BidPrice:  s.BidPrice,
		AskPrice:  s.AskPrice,
		Timestamp: parseGatewayTime(s.Ts),
	}
}

func (k sinopacKbar) toDomain() domain.Kbar {
	return domain.Kbar{
		Ts:     parseGatewayTime(k.Ts),
		Open:   k.Open,
		High:   k.High,
		Low:    k.Low,
		Close:  k.Close,
		Volume: k.Volume,
	}
}

func (o sinopacOrder) toDomain() domain.Order {
	return domain.Order{
		ID:        o.ID,
		Contract:  o.Code,
		Action:    domain.OrderAction(o.Action),
		Quantity:  o.Quantity,
		Price:     o.Price,
		OrderType: domain.OrderType(o.Type),
		Status:    domain.OrderStatus(o.Status),
		Timestamp: parseGatewayTime(o.Ts),
	}
}

func (p sinopacPosition) toDomain() domain.Position {
	return domain.Position{
		Contract:      p.Code,
		Name:          p.Name,
		Quantity:      p.Quantity,
		YdQuantity:    p.YdQuantity,
		AvgPrice:      p.Price,
		CurrentPrice:  p.LastPrice,
		UnrealizedPnl: p.Pnl,
		RealizedPnl:   p.RealizedPnl,
	}
}

func (bal sinopacBalance) toDomain() *domain.Balance {
	out := &domain.Balance{
		AccountID:        bal.AccountID,
		Currency:         bal.Currency,
		CashBalance:      bal.AccBalance,
		AvailableBalance: bal.Available,
		MarginUsed:       bal.MarginUsed,
		TotalEquity:      bal.TotalBalance,
		UnrealizedPnl:    bal.UnrealizedPnl,
		RealizedPnl:      bal.RealizedPnl,
	}
	if out.Currency == "" {
		out.Currency = "TWD"
	}
	return out
}

// parseGatewayTime accepts the gateway's RFC3339 timestamps and falls back
// to the zero time on anything else.
func parseGatewayTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ---------------------------------------------------------------------------
// Broker implementation
// ---------------------------------------------------------------------------

// Login authenticates against the gateway and stores the session token.
func (b *SinopacBroker) Login(ctx context.Context, creds domain.Credentials) ([]domain.Account, error) {
	body := map[string]string{
		"api_key":    creds.APIKey,
		"secret_key": creds.SecretKey,
		"person_id":  creds.PersonID,
		"password":   creds.Password,
	}

	var resp sinopacLoginResponse
	if err := b.do(ctx, http.MethodPost, "/v1/login", body, &resp); err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.token = resp.Token
	b.mu.Unlock()

	accounts := make([]domain.Account, 0, len(resp.Accounts))
	for _, a := range resp.Accounts {
		accounts = append(accounts, a.toDomain())
	}
	return accounts, nil
}

// Logout invalidates the session token on the gateway. The local token is
// dropped even if the remote call fails.
func (b *SinopacBroker) Logout(ctx context.Context) error {
	err := b.do(ctx, http.MethodPost, "/v1/logout", nil, nil)

	b.mu.Lock()
	b.token = ""
	b.mu.Unlock()

	return err
}

// ListAccounts returns the accounts for the current session.
func (b *SinopacBroker) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var wire []sinopacAccount
	if err := b.do(ctx, http.MethodGet, "/v1/accounts", nil, &wire); err != nil {
		return nil, err
	}
	accounts := make([]domain.Account, 0, len(wire))
	for _, a := range wire {
		accounts = append(accounts, a.toDomain())
	}
	return accounts, nil
}

// SearchContracts queries the gateway's contract catalog.
func (b *SinopacBroker) SearchContracts(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	q := url.Values{}
	if filter.Keyword != "" {
		q.Set("keyword", filter.Keyword)
	}
	if filter.Exchange != "" {
		q.Set("exchange", filter.Exchange)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}

	path := "/v1/contracts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var wire []sinopacContract
	if err := b.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	contracts := make([]domain.Contract, 0, len(wire))
	for _, c := range wire {
		contracts = append(contracts, c.toDomain())
	}
	return contracts, nil
}

// GetSnapshot fetches the current quote for one contract code.
func (b *SinopacBroker) GetSnapshot(ctx context.Context, code string) (*domain.Snapshot, error) {
	var wire sinopacSnapshot
	if err := b.do(ctx, http.MethodGet, "/v1/snapshots/"+url.PathEscape(code), nil, &wire); err != nil {
		return nil, err
	}
	return wire.toDomain(code), nil
}

// GetKbars fetches historical bars for a contract.
func (b *SinopacBroker) GetKbars(ctx context.Context, code, start, end, timeframe string) ([]domain.Kbar, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	if timeframe != "" {
		q.Set("timeframe", timeframe)
	}

	var wire []sinopacKbar
	path := "/v1/kbars/" + url.PathEscape(code) + "?" + q.Encode()
	if err := b.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	bars := make([]domain.Kbar, 0, len(wire))
	for _, k := range wire {
		bars = append(bars, k.toDomain())
	}
	return bars, nil
}

// PlaceOrder submits an order through the gateway.
func (b *SinopacBroker) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	body := map[string]any{
		"code":       req.Contract,
		"action":     string(req.Action),
		"quantity":   req.Quantity,
		"price":      req.Price,
		"order_type": string(req.OrderType),
	}

	var wire sinopacOrder
	if err := b.do(ctx, http.MethodPost, "/v1/orders", body, &wire); err != nil {
		return nil, err
	}
	order := wire.toDomain()
	return &order, nil
}

// CancelOrder cancels an open order by id.
func (b *SinopacBroker) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var wire sinopacOrder
	if err := b.do(ctx, http.MethodDelete, "/v1/orders/"+url.PathEscape(orderID), nil, &wire); err != nil {
		return nil, err
	}
	order := wire.toDomain()
	return &order, nil
}

// ListOrders returns all orders for the current session.
func (b *SinopacBroker) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var wire []sinopacOrder
	if err := b.do(ctx, http.MethodGet, "/v1/orders", nil, &wire); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(wire))
	for _, o := range wire {
		orders = append(orders, o.toDomain())
	}
	return orders, nil
}

// ListPositions returns all positions for the current session.
func (b *SinopacBroker) ListPositions(ctx context.Context) ([]domain.Position, error) {
	var wire []sinopacPosition
	if err := b.do(ctx, http.MethodGet, "/v1/positions", nil, &wire); err != nil {
		return nil, err
	}
	positions := make([]domain.Position, 0, len(wire))
	for _, p := range wire {
		positions = append(positions, p.toDomain())
	}
	return positions, nil
}

// AccountBalance returns the account's financial metrics.
func (b *SinopacBroker) AccountBalance(ctx context.Context) (*domain.Balance, error) {
	var wire sinopacBalance
	if err := b.do(ctx, http.MethodGet, "/v1/balance", nil, &wire); err != nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

// do performs one gateway request, decoding a JSON response into out when
// out is non-nil. HTTP 404 maps to ErrNotFound; other non-2xx statuses
// surface the gateway's error message.
func (b *SinopacBroker) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	b.mu.Lock()
	token := b.token
	b.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var gwErr sinopacError
		if err := json.NewDecoder(resp.Body).Decode(&gwErr); err == nil && gwErr.Message != "" {
			return fmt.Errorf("gateway: %s", gwErr.Message)
		}
		return fmt.Errorf("gateway: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
