package broker

import (
	"errors"
	"testing"

	"github.com/offbeat-studio/tradegate/internal/domain"
)

func testCreds() domain.Credentials {
	return domain.Credentials{
		APIKey:    "test-key",
		SecretKey: "test-secret",
		PersonID:  "A123456789",
		Password:  "hunter2",
	}
}

func TestSimulatorLogin(t *testing.T) {
	b := NewSimulatorBroker()
	ctx := t.Context()

	accounts, err := b.Login(ctx, testCreds())
	if err != nil {
		t.Fatalf("Login() returned error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("Login() resolved %d accounts, want 2", len(accounts))
	}
	if accounts[0].AccountID != "1234567890" || accounts[0].AccountType != "S" {
		t.Errorf("unexpected first account: %+v", accounts[0])
	}
	if !accounts[0].Signed {
		t.Error("expected seeded account to be signed")
	}
}

func TestSimulatorLoginMissingCredentials(t *testing.T) {
	b := NewSimulatorBroker()

	creds := testCreds()
	creds.Password = ""
	if _, err := b.Login(t.Context(), creds); err == nil {
		t.Fatal("Login() with missing password succeeded, want error")
	}
}

func TestSimulatorSearchContracts(t *testing.T) {
	b := NewSimulatorBroker()
	ctx := t.Context()

	all, err := b.SearchContracts(ctx, domain.ContractFilter{})
	if err != nil {
		t.Fatalf("SearchContracts() returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("SearchContracts() returned %d contracts, want 3", len(all))
	}

	byKeyword, err := b.SearchContracts(ctx, domain.ContractFilter{Keyword: "台積"})
	if err != nil {
		t.Fatalf("SearchContracts(keyword) returned error: %v", err)
	}
	if len(byKeyword) != 1 || byKeyword[0].Code != "2330" {
		t.Errorf("SearchContracts(keyword) = %+v, want single 2330", byKeyword)
	}

	byCode, err := b.SearchContracts(ctx, domain.ContractFilter{Keyword: "2317"})
	if err != nil {
		t.Fatalf("SearchContracts(code) returned error: %v", err)
	}
	if len(byCode) != 1 || byCode[0].Name != "鴻海" {
		t.Errorf("SearchContracts(code) = %+v, want single 鴻海", byCode)
	}

	none, err := b.SearchContracts(ctx, domain.ContractFilter{Exchange: "OTC"})
	if err != nil {
		t.Fatalf("SearchContracts(exchange) returned error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("SearchContracts(OTC) returned %d contracts, want 0", len(none))
	}
}

func TestSimulatorSnapshotDeterministic(t *testing.T) {
	b := NewSimulatorBroker()
	ctx := t.Context()

	first, err := b.GetSnapshot(ctx, "2330")
	if err != nil {
		t.Fatalf("GetSnapshot() returned error: %v", err)
	}
	second, err := b.GetSnapshot(ctx, "2330")
	if err != nil {
		t.Fatalf("GetSnapshot() second call returned error: %v", err)
	}
	if first.Close != second.Close || first.Volume != second.Volume {
		t.Errorf("snapshots disagree: %+v vs %+v", first, second)
	}
	if first.BidPrice >= first.AskPrice {
		t.Errorf("bid %f not below ask %f", first.BidPrice, first.AskPrice)
	}
}

func TestSimulatorSnapshotUnknownCode(t *testing.T) {
	b := NewSimulatorBroker()

	_, err := b.GetSnapshot(t.Context(), "9999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSnapshot(9999) error = %v, want ErrNotFound", err)
	}
}

func TestSimulatorKbars(t *testing.T) {
	b := NewSimulatorBroker()

	// 2024-01-01 is a Monday; two full weeks yield 10 trading days.
	bars, err := b.GetKbars(t.Context(), "2330", "2024-01-01", "2024-01-14", "1D")
	if err != nil {
		t.Fatalf("GetKbars() returned error: %v", err)
	}
	if len(bars) != 10 {
		t.Fatalf("GetKbars() returned %d bars, want 10", len(bars))
	}
	for _, bar := range bars {
		if bar.High < bar.Open || bar.Low > bar.Open {
			t.Errorf("inconsistent bar: %+v", bar)
		}
		if wd := bar.Ts.Weekday(); wd == 0 || wd == 6 {
			t.Errorf("bar on weekend: %v", bar.Ts)
		}
	}
}

func TestSimulatorOrderLifecycle(t *testing.T) {
	b := NewSimulatorBroker()
	ctx := t.Context()

	if _, err := b.Login(ctx, testCreds()); err != nil {
		t.Fatalf("Login() returned error: %v", err)
	}

	order, err := b.PlaceOrder(ctx, domain.OrderRequest{
		Contract:  "2330",
		Action:    domain.ActionBuy,
		Quantity:  1000,
		Price:     500.0,
		OrderType: domain.OrderTypeROD,
	})
	if err != nil {
		t.Fatalf("PlaceOrder() returned error: %v", err)
	}
	if order.ID == "" || order.Status != domain.OrderStatusSubmitted {
		t.Errorf("unexpected order: %+v", order)
	}

	cancelled, err := b.CancelOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("CancelOrder() returned error: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Errorf("CancelOrder() status = %s, want Cancelled", cancelled.Status)
	}

	orders, err := b.ListOrders(ctx)
	if err != nil {
		t.Fatalf("ListOrders() returned error: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Errorf("ListOrders() = %+v, want the cancelled order", orders)
	}
}

func TestSimulatorCancelUnknownOrder(t *testing.T) {
	b := NewSimulatorBroker()

	_, err := b.CancelOrder(t.Context(), "SIM99999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CancelOrder(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestSimulatorPositionsAndBalance(t *testing.T) {
	b := NewSimulatorBroker()
	ctx := t.Context()

	if _, err := b.Login(ctx, testCreds()); err != nil {
		t.Fatalf("Login() returned error: %v", err)
	}

	positions, err := b.ListPositions(ctx)
	if err != nil {
		t.Fatalf("ListPositions() returned error: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("ListPositions() returned %d positions, want 2", len(positions))
	}
	if positions[0].EffectiveShares() != 3000 {
		t.Errorf("EffectiveShares() = %d, want 3000", positions[0].EffectiveShares())
	}

	balance, err := b.AccountBalance(ctx)
	if err != nil {
		t.Fatalf("AccountBalance() returned error: %v", err)
	}
	if balance.Currency != "TWD" {
		t.Errorf("Balance.Currency = %q, want TWD", balance.Currency)
	}
	if balance.TotalEquity <= 0 {
		t.Errorf("Balance.TotalEquity = %f, want positive", balance.TotalEquity)
	}
}

func TestBrokerNames(t *testing.T) {
	if got := NewSimulatorBroker().Name(); got != "simulator" {
		t.Errorf("SimulatorBroker.Name() = %q, want %q", got, "simulator")
	}
	if got := NewSinopacBroker("http://localhost:9100").Name(); got != "sinopac" {
		t.Errorf("SinopacBroker.Name() = %q, want %q", got, "sinopac")
	}
	if got := NewAlpacaBroker("key", "secret", "", "").Name(); got != "alpaca" {
		t.Errorf("AlpacaBroker.Name() = %q, want %q", got, "alpaca")
	}
	if got := NewSimulatorBroker().SharesPerLot(); got != 1000 {
		t.Errorf("SimulatorBroker.SharesPerLot() = %d, want 1000", got)
	}
	if got := NewAlpacaBroker("key", "secret", "", "").SharesPerLot(); got != 1 {
		t.Errorf("AlpacaBroker.SharesPerLot() = %d, want 1", got)
	}
}
