package broker

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/offbeat-studio/tradegate/internal/domain"
)

// Compile-time interface check.
var _ Broker = (*SimulatorBroker)(nil)

// SimulatorBroker implements the Broker interface for offline development
// and testing. It serves a small seeded Taiwan-market contract catalog and
// tracks orders and positions in memory without making external API calls.
type SimulatorBroker struct {
	mu        sync.Mutex
	loggedIn  bool
	accounts  []domain.Account
	contracts map[string]domain.Contract
	orders    map[string]*domain.Order
	positions []domain.Position
	orderSeq  int
	now       func() time.Time
}

// NewSimulatorBroker creates a SimulatorBroker seeded with a few well-known
// TSE contracts and holdings.
func NewSimulatorBroker() *SimulatorBroker {
	seed := []domain.Contract{
		{Code: "2330", Symbol: "2330", Name: "台積電", Category: "Stock", Exchange: "TSE", Currency: "TWD"},
		{Code: "2317", Symbol: "2317", Name: "鴻海", Category: "Stock", Exchange: "TSE", Currency: "TWD"},
		{Code: "2454", Symbol: "2454", Name: "聯發科", Category: "Stock", Exchange: "TSE", Currency: "TWD"},
	}

	contracts := make(map[string]domain.Contract, len(seed))
	for _, c := range seed {
		contracts[c.Code] = c
	}

	return &SimulatorBroker{
		contracts: contracts,
		orders:    make(map[string]*domain.Order),
		positions: []domain.Position{
			{Contract: "2330", Name: "台積電", Quantity: 3000, YdQuantity: 2500,
				AvgPrice: 510.0, CurrentPrice: 580.0, UnrealizedPnl: 210000.0, RealizedPnl: 15000.0},
			{Contract: "2317", Name: "鴻海", Quantity: 500, YdQuantity: 500,
				AvgPrice: 98.5, CurrentPrice: 104.0, UnrealizedPnl: 2750.0, RealizedPnl: 0.0},
		},
		now: time.Now,
	}
}

// Name returns "simulator".
func (b *SimulatorBroker) Name() string { return "simulator" }

// SharesPerLot returns the Taiwan-market lot size.
func (b *SimulatorBroker) SharesPerLot() int { return domain.SharesPerLot }

// Login validates that all four credential fields are present and resolves
// two simulated accounts (stock and futures).
func (b *SimulatorBroker) Login(_ context.Context, creds domain.Credentials) ([]domain.Account, error) {
	if creds.APIKey == "" || creds.SecretKey == "" || creds.PersonID == "" || creds.Password == "" {
		return nil, fmt.Errorf("missing credentials")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loggedIn = true
	b.accounts = []domain.Account{
		{AccountID: "1234567890", BrokerID: "9A95", AccountType: "S", Signed: true, Username: "SIM-STOCK"},
		{AccountID: "0987654321", BrokerID: "9A95", AccountType: "F", Signed: true, Username: "SIM-FUTURES"},
	}
	return b.accounts, nil
}

// Logout clears the simulated session.
func (b *SimulatorBroker) Logout(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loggedIn = false
	b.accounts = nil
	return nil
}

// ListAccounts returns the simulated accounts.
func (b *SimulatorBroker) ListAccounts(_ context.Context) ([]domain.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loggedIn {
		return nil, fmt.Errorf("not logged in")
	}
	out := make([]domain.Account, len(b.accounts))
	copy(out, b.accounts)
	return out, nil
}

// SearchContracts returns seeded contracts matching the filter, applying
// the same keyword/exchange/category rules a remote catalog would.
func (b *SimulatorBroker) SearchContracts(_ context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []domain.Contract
	for _, code := range []string{"2330", "2317", "2454"} {
		c := b.contracts[code]
		if !domain.MatchContract(c, filter) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// GetSnapshot synthesises a deterministic quote for a seeded contract. The
// figures are derived from a hash of the code so repeated calls agree.
func (b *SimulatorBroker) GetSnapshot(_ context.Context, code string) (*domain.Snapshot, error) {
	b.mu.Lock()
	c, ok := b.contracts[code]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("contract %s: %w", code, ErrNotFound)
	}

	h := float64(codeHash(code) % 50)
	return &domain.Snapshot{
		Code:      code,
		Name:      c.Name,
		Close:     100.0 + h,
		Open:      98.0 + h,
		High:      105.0 + h,
		Low:       95.0 + h,
		Volume:    1_000_000 + int64(codeHash(code)%500_000),
		BidPrice:  99.5 + h,
		AskPrice:  100.5 + h,
		Timestamp: b.now(),
	}, nil
}

// GetKbars synthesises one daily bar per weekday between start and end with
// a deterministic walk seeded by the contract code. The timeframe argument
// is accepted but the simulator always serves daily bars.
func (b *SimulatorBroker) GetKbars(_ context.Context, code, start, end, _ string) ([]domain.Kbar, error) {
	b.mu.Lock()
	_, ok := b.contracts[code]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("contract %s: %w", code, ErrNotFound)
	}

	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("parsing start date %q: %w", start, err)
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, fmt.Errorf("parsing end date %q: %w", end, err)
	}

	base := 100.0 + float64(codeHash(code)%50)
	var bars []domain.Kbar
	i := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		drift := float64((codeHash(code)+uint64(i))%7) - 3.0
		open := base + drift
		bars = append(bars, domain.Kbar{
			Ts:     d,
			Open:   open,
			High:   open + 2.5,
			Low:    open - 2.0,
			Close:  open + 0.5,
			Volume: 800_000 + int64((codeHash(code)+uint64(i))%400_000),
		})
		base = open + 0.5
		i++
	}
	return bars, nil
}

// PlaceOrder records the order in memory with a fresh simulated order id.
func (b *SimulatorBroker) PlaceOrder(_ context.Context, req domain.OrderRequest) (*domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.contracts[req.Contract]; !ok {
		return nil, fmt.Errorf("contract %s: %w", req.Contract, ErrNotFound)
	}

	b.orderSeq++
	order := &domain.Order{
		ID:        fmt.Sprintf("SIM%05d", b.orderSeq),
		Contract:  req.Contract,
		Action:    req.Action,
		Quantity:  req.Quantity,
		Price:     req.Price,
		OrderType: req.OrderType,
		Status:    domain.OrderStatusSubmitted,
		Timestamp: b.now(),
	}
	b.orders[order.ID] = order

	cp := *order
	return &cp, nil
}

// CancelOrder marks the specified order as cancelled.
func (b *SimulatorBroker) CancelOrder(_ context.Context, orderID string) (*domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	order.Status = domain.OrderStatusCancelled
	order.Timestamp = b.now()

	cp := *order
	return &cp, nil
}

// ListOrders returns all simulated orders in placement order.
func (b *SimulatorBroker) ListOrders(_ context.Context) ([]domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Order, 0, len(b.orders))
	for i := 1; i <= b.orderSeq; i++ {
		if o, ok := b.orders[fmt.Sprintf("SIM%05d", i)]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

// ListPositions returns the seeded simulated positions.
func (b *SimulatorBroker) ListPositions(_ context.Context) ([]domain.Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Position, len(b.positions))
	copy(out, b.positions)
	return out, nil
}

// AccountBalance returns simulated account metrics consistent with the
// seeded positions.
func (b *SimulatorBroker) AccountBalance(_ context.Context) (*domain.Balance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loggedIn {
		return nil, fmt.Errorf("not logged in")
	}
	return &domain.Balance{
		AccountID:        "1234567890",
		Currency:         "TWD",
		CashBalance:      1_000_000.0,
		AvailableBalance: 850_000.0,
		MarginUsed:       0.0,
		TotalEquity:      2_012_750.0,
		UnrealizedPnl:    212_750.0,
		RealizedPnl:      15_000.0,
	}, nil
}

func codeHash(code string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(code))
	return h.Sum64()
}
