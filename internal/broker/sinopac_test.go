package broker

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/offbeat-studio/tradegate/internal/domain"
)

// newGateway spins up a fake Sinopac gateway covering the endpoints the
// client touches.
func newGateway(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if creds["api_key"] == "" || creds["password"] == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"accounts": []map[string]any{
				{"account_id": "1234567890", "broker_id": "9A95", "account_type": "S", "signed": true},
			},
		})
	})

	mux.HandleFunc("POST /v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /v1/snapshots/{code}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "missing token"})
			return
		}
		if r.PathValue("code") != "2330" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"name": "台積電", "close": 580.0, "open": 575.0, "high": 584.0, "low": 573.0,
			"volume": 31415926, "bid_price": 579.0, "ask_price": 580.0,
			"ts": "2024-06-03T13:30:00+08:00",
		})
	})

	mux.HandleFunc("GET /v1/contracts", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") == "2330" {
			json.NewEncoder(w).Encode([]map[string]any{
				{"code": "2330", "name": "台積電", "category": "Stock", "exchange": "TSE"},
			})
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{})
	})

	mux.HandleFunc("POST /v1/orders", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "ORD12345", "code": req["code"], "action": req["action"],
			"quantity": req["quantity"], "price": req["price"], "order_type": req["order_type"],
			"status": "Submitted", "ts": "2024-06-03T09:00:01+08:00",
		})
	})

	mux.HandleFunc("DELETE /v1/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "ORD12345" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "ORD12345", "code": "2330", "action": "Buy", "quantity": 1000,
			"status": "Cancelled", "ts": "2024-06-03T09:05:00+08:00",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSinopacLoginAndSnapshot(t *testing.T) {
	srv := newGateway(t)
	b := NewSinopacBroker(srv.URL)
	ctx := t.Context()

	accounts, err := b.Login(ctx, testCreds())
	if err != nil {
		t.Fatalf("Login() returned error: %v", err)
	}
	if len(accounts) != 1 || accounts[0].AccountID != "1234567890" {
		t.Fatalf("Login() accounts = %+v, want single 1234567890", accounts)
	}

	snap, err := b.GetSnapshot(ctx, "2330")
	if err != nil {
		t.Fatalf("GetSnapshot() returned error: %v", err)
	}
	if snap.Code != "2330" || snap.Name != "台積電" {
		t.Errorf("snapshot identity = %q/%q, want 2330/台積電", snap.Code, snap.Name)
	}
	if snap.Close != 580.0 || snap.Volume != 31415926 {
		t.Errorf("snapshot figures wrong: %+v", snap)
	}
	if snap.Timestamp.IsZero() {
		t.Error("snapshot timestamp not parsed")
	}
}

func TestSinopacLoginFailure(t *testing.T) {
	srv := newGateway(t)
	b := NewSinopacBroker(srv.URL)

	creds := testCreds()
	creds.Password = ""
	if _, err := b.Login(t.Context(), creds); err == nil {
		t.Fatal("Login() with bad credentials succeeded, want error")
	}
}

func TestSinopacSnapshotNotFound(t *testing.T) {
	srv := newGateway(t)
	b := NewSinopacBroker(srv.URL)
	ctx := t.Context()

	if _, err := b.Login(ctx, testCreds()); err != nil {
		t.Fatalf("Login() returned error: %v", err)
	}

	_, err := b.GetSnapshot(ctx, "9999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSnapshot(9999) error = %v, want ErrNotFound", err)
	}
}

func TestSinopacSearchContracts(t *testing.T) {
	srv := newGateway(t)
	b := NewSinopacBroker(srv.URL)

	contracts, err := b.SearchContracts(t.Context(), domain.ContractFilter{Keyword: "2330"})
	if err != nil {
		t.Fatalf("SearchContracts() returned error: %v", err)
	}
	if len(contracts) != 1 {
		t.Fatalf("SearchContracts() returned %d contracts, want 1", len(contracts))
	}
	c := contracts[0]
	if c.Symbol != "2330" {
		t.Errorf("empty wire symbol should default to code, got %q", c.Symbol)
	}
	if c.Currency != "TWD" {
		t.Errorf("empty wire currency should default to TWD, got %q", c.Currency)
	}
}

func TestSinopacOrderRoundTrip(t *testing.T) {
	srv := newGateway(t)
	b := NewSinopacBroker(srv.URL)
	ctx := t.Context()

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
	if order.ID != "ORD12345" || order.Status != domain.OrderStatusSubmitted {
		t.Errorf("unexpected order: %+v", order)
	}
	if order.Contract != "2330" || order.Quantity != 1000 || order.Price != 500.0 {
		t.Errorf("order echo mismatch: %+v", order)
	}

	cancelled, err := b.CancelOrder(ctx, "ORD12345")
	if err != nil {
		t.Fatalf("CancelOrder() returned error: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Errorf("CancelOrder() status = %s, want Cancelled", cancelled.Status)
	}

	if _, err := b.CancelOrder(ctx, "ORD99999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CancelOrder(unknown) error = %v, want ErrNotFound", err)
	}
}
