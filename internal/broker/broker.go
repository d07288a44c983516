// Package broker defines the Broker interface and provides implementations
// for executing orders and managing accounts across different brokerages.
package broker

import (
	"context"
	"errors"

	"github.com/offbeat-studio/tradegate/internal/domain"
)

// ErrNotFound reports that a referenced contract or order id could not be
// resolved by the brokerage.
var ErrNotFound = errors.New("not found")

// Broker abstracts brokerage operations for authentication, market data,
// order execution, and account management. Implementations are selected by
// explicit configuration, never by import probing. Calls through a Broker
// are blocking and treated as non-reentrant; callers serialise connect and
// disconnect transitions.
type Broker interface {
	// Name returns the broker identifier (e.g. "sinopac", "simulator").
	Name() string

	// SharesPerLot returns the number of shares in one trading lot on this
	// brokerage's market (1000 for Taiwan equities, 1 for US equities).
	SharesPerLot() int

	// Login authenticates with the brokerage and returns the resolved
	// accounts.
	Login(ctx context.Context, creds domain.Credentials) ([]domain.Account, error)

	// Logout releases the brokerage session. Implementations are
	// best-effort; a failed logout leaves no usable session behind.
	Logout(ctx context.Context) error

	// ListAccounts returns the accounts resolved at login.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// SearchContracts returns contracts matching the filter.
	SearchContracts(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error)

	// GetSnapshot returns the current quote for a single contract code.
	// Unknown codes yield ErrNotFound.
	GetSnapshot(ctx context.Context, code string) (*domain.Snapshot, error)

	// GetKbars returns historical bars for a contract between start and end
	// (inclusive dates, YYYY-MM-DD) at the given timeframe.
	GetKbars(ctx context.Context, code, start, end, timeframe string) ([]domain.Kbar, error)

	// PlaceOrder submits an order and returns the brokerage's record of it.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)

	// CancelOrder requests cancellation of an open order by its ID and
	// returns the updated order record.
	CancelOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// ListOrders returns all orders known to the current session.
	ListOrders(ctx context.Context) ([]domain.Order, error)

	// ListPositions returns all current positions held at the brokerage.
	ListPositions(ctx context.Context) ([]domain.Position, error)

	// AccountBalance returns a snapshot of the account's financial metrics.
	AccountBalance(ctx context.Context) (*domain.Balance, error)
}
