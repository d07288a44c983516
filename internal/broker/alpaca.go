package broker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"github.com/offbeat-studio/tradegate/internal/domain"
)

// Compile-time interface check.
var _ Broker = (*AlpacaBroker)(nil)

// searchLimit bounds how many assets a contract search returns.
const searchLimit = 50

// AlpacaBroker implements the Broker interface using the Alpaca brokerage
// API: the trading client for orders, positions, and account state, and the
// market-data client for snapshots and bars. Alpaca sessions are API-key
// based, so person_id and password credentials are ignored by this backend.
type AlpacaBroker struct {
	apiKey    string
	apiSecret string
	baseURL   string
	dataURL   string

	mu       sync.Mutex
	trading  *alpaca.Client
	md       *marketdata.Client
	accounts []domain.Account
}

// NewAlpacaBroker creates a new AlpacaBroker configured with the given
// credentials and API endpoints. Credentials supplied at login override
// these defaults.
func NewAlpacaBroker(apiKey, apiSecret, baseURL, dataURL string) *AlpacaBroker {
	return &AlpacaBroker{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		dataURL:   dataURL,
	}
}

// Name returns "alpaca".
func (b *AlpacaBroker) Name() string { return "alpaca" }

// SharesPerLot returns 1: US equities trade in single shares.
func (b *AlpacaBroker) SharesPerLot() int { return 1 }

// Login constructs the SDK clients and verifies the credentials with an
// account lookup.
func (b *AlpacaBroker) Login(_ context.Context, creds domain.Credentials) ([]domain.Account, error) {
	apiKey := creds.APIKey
	apiSecret := creds.SecretKey
	if apiKey == "" {
		apiKey = b.apiKey
	}
	if apiSecret == "" {
		apiSecret = b.apiSecret
	}
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("missing credentials")
	}

	trading := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   b.baseURL,
	})
	md := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   b.dataURL,
	})

	acct, err := trading.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("verifying credentials: %w", err)
	}

	accounts := []domain.Account{{
		AccountID:   acct.AccountNumber,
		BrokerID:    "alpaca",
		AccountType: "S",
		Signed:      strings.EqualFold(string(acct.Status), "ACTIVE"),
	}}

	b.mu.Lock()
	b.trading = trading
	b.md = md
	b.accounts = accounts
	b.mu.Unlock()

	return accounts, nil
}

// Logout drops the SDK clients. The Alpaca REST API is stateless, so there
// is nothing to invalidate remotely.
func (b *AlpacaBroker) Logout(_ context.Context) error {
	b.mu.Lock()
	b.trading = nil
	b.md = nil
	b.accounts = nil
	b.mu.Unlock()
	return nil
}

// ListAccounts returns the account resolved at login.
func (b *AlpacaBroker) ListAccounts(_ context.Context) ([]domain.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.trading == nil {
		return nil, fmt.Errorf("not logged in")
	}
	out := make([]domain.Account, len(b.accounts))
	copy(out, b.accounts)
	return out, nil
}

func (b *AlpacaBroker) clients() (*alpaca.Client, *marketdata.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.trading == nil || b.md == nil {
		return nil, nil, fmt.Errorf("not logged in")
	}
	return b.trading, b.md, nil
}

// SearchContracts lists active tradable assets matching the filter.
func (b *AlpacaBroker) SearchContracts(_ context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	trading, _, err := b.clients()
	if err != nil {
		return nil, err
	}

	assets, err := trading.GetAssets(alpaca.GetAssetsRequest{Status: "active"})
	if err != nil {
		return nil, fmt.Errorf("GetAssets: %w", err)
	}

	var out []domain.Contract
	for _, a := range assets {
		c := assetToContract(a)
		if !domain.MatchContract(c, filter) {
			continue
		}
		out = append(out, c)
		if len(out) >= searchLimit {
			break
		}
	}
	return out, nil
}

// GetSnapshot fetches the latest quote and daily bar for one symbol.
func (b *AlpacaBroker) GetSnapshot(_ context.Context, code string) (*domain.Snapshot, error) {
	_, md, err := b.clients()
	if err != nil {
		return nil, err
	}

	snap, err := md.GetSnapshot(code, marketdata.GetSnapshotRequest{})
	if err != nil {
		return nil, mapAlpacaErr(fmt.Errorf("GetSnapshot %s: %w", code, err))
	}
	if snap == nil {
		return nil, fmt.Errorf("symbol %s: %w", code, ErrNotFound)
	}
	return snapshotToDomain(code, snap), nil
}

// GetKbars fetches historical bars for one symbol.
func (b *AlpacaBroker) GetKbars(_ context.Context, code, start, end, timeframe string) ([]domain.Kbar, error) {
	_, md, err := b.clients()
	if err != nil {
		return nil, err
	}

	from, err := parseDay(start)
	if err != nil {
		return nil, err
	}
	to, err := parseDay(end)
	if err != nil {
		return nil, err
	}

	bars, err := md.GetBars(code, marketdata.GetBarsRequest{
		TimeFrame: timeFrameFromString(timeframe),
		Start:     from,
		End:       to,
	})
	if err != nil {
		return nil, mapAlpacaErr(fmt.Errorf("GetBars %s: %w", code, err))
	}

	out := make([]domain.Kbar, 0, len(bars))
	for _, bar := range bars {
		out = append(out, domain.Kbar{
			Ts:     bar.Timestamp,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: int64(bar.Volume),
		})
	}
	return out, nil
}

// PlaceOrder submits an order. Price zero becomes a market order.
func (b *AlpacaBroker) PlaceOrder(_ context.Context, req domain.OrderRequest) (*domain.Order, error) {
	trading, _, err := b.clients()
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(req.Quantity)
	placeReq := alpaca.PlaceOrderRequest{
		Symbol:      req.Contract,
		Qty:         &qty,
		Side:        alpacaSide(req.Action),
		Type:        alpaca.Market,
		TimeInForce: alpacaTIF(req.OrderType),
	}
	if req.Price > 0 {
		limit := decimal.NewFromFloat(req.Price)
		placeReq.Type = alpaca.Limit
		placeReq.LimitPrice = &limit
	}

	order, err := trading.PlaceOrder(placeReq)
	if err != nil {
		return nil, mapAlpacaErr(fmt.Errorf("PlaceOrder %s: %w", req.Contract, err))
	}
	return orderToDomain(order), nil
}

// CancelOrder cancels an open order and returns its updated record.
func (b *AlpacaBroker) CancelOrder(_ context.Context, orderID string) (*domain.Order, error) {
	trading, _, err := b.clients()
	if err != nil {
		return nil, err
	}

	if err := trading.CancelOrder(orderID); err != nil {
		return nil, mapAlpacaErr(fmt.Errorf("CancelOrder %s: %w", orderID, err))
	}

	order, err := trading.GetOrder(orderID)
	if err != nil {
		return nil, mapAlpacaErr(fmt.Errorf("GetOrder %s: %w", orderID, err))
	}
	return orderToDomain(order), nil
}

// ListOrders returns recent orders of any status.
func (b *AlpacaBroker) ListOrders(_ context.Context) ([]domain.Order, error) {
	trading, _, err := b.clients()
	if err != nil {
		return nil, err
	}

	orders, err := trading.GetOrders(alpaca.GetOrdersRequest{Status: "all", Limit: 100})
	if err != nil {
		return nil, mapAlpacaErr(fmt.Errorf("GetOrders: %w", err))
	}

	out := make([]domain.Order, 0, len(orders))
	for i := range orders {
		out = append(out, *orderToDomain(&orders[i]))
	}
	return out, nil
}

// ListPositions returns all open positions.
func (b *AlpacaBroker) ListPositions(_ context.Context) ([]domain.Position, error) {
	trading, _, err := b.clients()
	if err != nil {
		return nil, err
	}

	positions, err := trading.GetPositions()
	if err != nil {
		return nil, mapAlpacaErr(fmt.Errorf("GetPositions: %w", err))
	}

	out := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		qty := p.Qty.IntPart()
		out = append(out, domain.Position{
			Contract: p.Symbol,
			Name:     p.Symbol,
			Quantity: qty,
			// Alpaca does not report a prior-day quantity; the current
			// holding stands in for both days.
			YdQuantity:    qty,
			AvgPrice:      p.AvgEntryPrice.InexactFloat64(),
			CurrentPrice:  decimalValue(p.CurrentPrice),
			UnrealizedPnl: decimalValue(p.UnrealizedPL),
		})
	}
	return out, nil
}

// AccountBalance maps the Alpaca account snapshot onto the balance shape.
func (b *AlpacaBroker) AccountBalance(_ context.Context) (*domain.Balance, error) {
	trading, _, err := b.clients()
	if err != nil {
		return nil, err
	}

	acct, err := trading.GetAccount()
	if err != nil {
		return nil, mapAlpacaErr(fmt.Errorf("GetAccount: %w", err))
	}

	var unrealized float64
	if positions, err := trading.GetPositions(); err == nil {
		for _, p := range positions {
			unrealized += decimalValue(p.UnrealizedPL)
		}
	}

	return &domain.Balance{
		AccountID:        acct.AccountNumber,
		Currency:         acct.Currency,
		CashBalance:      acct.Cash.InexactFloat64(),
		AvailableBalance: acct.BuyingPower.InexactFloat64(),
		MarginUsed:       acct.InitialMargin.InexactFloat64(),
		TotalEquity:      acct.Equity.InexactFloat64(),
		UnrealizedPnl:    unrealized,
	}, nil
}

// ---------------------------------------------------------------------------
// SDK boundary translation
// ---------------------------------------------------------------------------

func assetToContract(a alpaca.Asset) domain.Contract {
	return domain.Contract{
		Code:     a.Symbol,
		Symbol:   a.Symbol,
		Name:     a.Name,
		Category: "Stock",
		Exchange: a.Exchange,
		Currency: "USD",
	}
}

func snapshotToDomain(code string, snap *marketdata.Snapshot) *domain.Snapshot {
	out := &domain.Snapshot{Code: code, Name: code}

	if bar := snap.DailyBar; bar != nil {
		out.Open = bar.Open
		out.High = bar.High
		out.Low = bar.Low
		out.Close = bar.Close
		out.Volume = int64(bar.Volume)
		out.Timestamp = bar.Timestamp
	}
	if q := snap.LatestQuote; q != nil {
		out.BidPrice = q.BidPrice
		out.AskPrice = q.AskPrice
		if out.Timestamp.IsZero() {
			out.Timestamp = q.Timestamp
		}
	}
	if tr := snap.LatestTrade; tr != nil {
		out.Close = tr.Price
		if out.Timestamp.IsZero() {
			out.Timestamp = tr.Timestamp
		}
	}
	return out
}

func orderToDomain(o *alpaca.Order) *domain.Order {
	out := &domain.Order{
		ID:        o.ID,
		Contract:  o.Symbol,
		Status:    alpacaStatus(o.Status),
		Timestamp: o.CreatedAt,
	}
	if o.Side == alpaca.Sell {
		out.Action = domain.ActionSell
	} else {
		out.Action = domain.ActionBuy
	}
	if o.Qty != nil {
		out.Quantity = o.Qty.IntPart()
	}
	if o.LimitPrice != nil {
		out.Price = o.LimitPrice.InexactFloat64()
	}
	switch o.TimeInForce {
	case alpaca.IOC:
		out.OrderType = domain.OrderTypeIOC
	case alpaca.FOK:
		out.OrderType = domain.OrderTypeFOK
	default:
		out.OrderType = domain.OrderTypeROD
	}
	return out
}

func alpacaSide(action domain.OrderAction) alpaca.Side {
	if action == domain.ActionSell {
		return alpaca.Sell
	}
	return alpaca.Buy
}

// alpacaTIF maps Taiwan-style time-in-force names onto Alpaca's. ROD (rest
// of day) is a day order.
func alpacaTIF(t domain.OrderType) alpaca.TimeInForce {
	switch t {
	case domain.OrderTypeIOC:
		return alpaca.IOC
	case domain.OrderTypeFOK:
		return alpaca.FOK
	default:
		return alpaca.Day
	}
}

func alpacaStatus(s string) domain.OrderStatus {
	switch strings.ToLower(s) {
	case "new", "accepted", "pending_new":
		return domain.OrderStatusSubmitted
	case "partially_filled":
		return domain.OrderStatusPartFilled
	case "filled":
		return domain.OrderStatusFilled
	case "canceled", "pending_cancel", "expired":
		return domain.OrderStatusCancelled
	case "rejected", "suspended", "stopped":
		return domain.OrderStatusFailed
	default:
		return domain.OrderStatusPendingSubmit
	}
}

func timeFrameFromString(timeframe string) marketdata.TimeFrame {
	switch strings.ToUpper(timeframe) {
	case "", "1D":
		return marketdata.OneDay
	case "1H":
		return marketdata.NewTimeFrame(1, marketdata.Hour)
	case "5M":
		return marketdata.NewTimeFrame(5, marketdata.Min)
	case "1M":
		return marketdata.NewTimeFrame(1, marketdata.Min)
	case "1W":
		return marketdata.NewTimeFrame(1, marketdata.Week)
	default:
		return marketdata.OneDay
	}
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

func decimalValue(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	return d.InexactFloat64()
}

// mapAlpacaErr converts the SDK's 404 responses into ErrNotFound so callers
// can treat unknown symbols and order ids uniformly across backends.
func mapAlpacaErr(err error) error {
	var apiErr *alpaca.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	}
	return err
}
