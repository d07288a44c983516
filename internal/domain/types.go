// Package domain defines the core types shared across the tradegate
// adapter: contracts, market data, orders, positions, and account state.
package domain

import "time"

// SharesPerLot is the number of shares in one standard Taiwan-market
// trading lot. Odd-lot holdings are reported as a remainder.
const SharesPerLot = 1000

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

// OrderAction is the side of an order.
type OrderAction string

const (
	ActionBuy  OrderAction = "Buy"
	ActionSell OrderAction = "Sell"
)

// OrderType is the time-in-force policy of an order.
type OrderType string

const (
	OrderTypeROD OrderType = "ROD" // rest of day
	OrderTypeIOC OrderType = "IOC" // immediate or cancel
	OrderTypeFOK OrderType = "FOK" // fill or kill
)

// OrderStatus is the lifecycle state reported by the brokerage.
type OrderStatus string

const (
	OrderStatusPendingSubmit OrderStatus = "PendingSubmit"
	OrderStatusSubmitted     OrderStatus = "Submitted"
	OrderStatusPartFilled    OrderStatus = "PartFilled"
	OrderStatusFilled        OrderStatus = "Filled"
	OrderStatusCancelled     OrderStatus = "Cancelled"
	OrderStatusFailed        OrderStatus = "Failed"
)

// ---------------------------------------------------------------------------
// Session inputs
// ---------------------------------------------------------------------------

// Credentials are the four login fields required by the brokerage.
type Credentials struct {
	APIKey    string
	SecretKey string
	PersonID  string
	Password  string
}

// ContractFilter narrows a contract search. Empty fields match everything.
type ContractFilter struct {
	Keyword  string
	Exchange string
	Category string
}

// ---------------------------------------------------------------------------
// Brokerage data
// ---------------------------------------------------------------------------

// Account identifies one brokerage account resolved at login.
type Account struct {
	AccountID   string `json:"account_id"`
	BrokerID    string `json:"broker_id"`
	AccountType string `json:"account_type"`
	Signed      bool   `json:"signed"`
	Username    string `json:"username,omitempty"`
}

// Contract is a tradable instrument.
type Contract struct {
	Code     string `json:"code"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
}

// Snapshot is a point-in-time quote for a contract.
type Snapshot struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Close     float64   `json:"close"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Volume    int64     `json:"volume"`
	BidPrice  float64   `json:"bid_price"`
	AskPrice  float64   `json:"ask_price"`
	Timestamp time.Time `json:"timestamp"`
}

// Kbar is one OHLCV aggregate over a fixed time interval.
type Kbar struct {
	Ts     time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// OrderRequest describes an order to be placed. Price zero means a market
// order.
type OrderRequest struct {
	Contract  string
	Action    OrderAction
	Quantity  int64
	Price     float64
	OrderType OrderType
}

// Order is an order record as reported by the brokerage.
type Order struct {
	ID        string      `json:"order_id"`
	Contract  string      `json:"contract"`
	Action    OrderAction `json:"action"`
	Quantity  int64       `json:"quantity"`
	Price     float64     `json:"price"`
	OrderType OrderType   `json:"order_type,omitempty"`
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// Position is a holding in one contract. Quantity and YdQuantity are in
// shares; YdQuantity is the prior trading day's holding.
type Position struct {
	Contract      string
	Name          string
	Quantity      int64
	YdQuantity    int64
	AvgPrice      float64
	CurrentPrice  float64
	UnrealizedPnl float64
	RealizedPnl   float64
}

// EffectiveShares is the holding that can be acted on today: the larger of
// the current-day and prior-day quantities.
func (p Position) EffectiveShares() int64 {
	if p.YdQuantity > p.Quantity {
		return p.YdQuantity
	}
	return p.Quantity
}

// SplitLots decomposes a share count into whole lots and remaining odd
// shares, using lotSize shares per lot. A lotSize below one is treated as
// one share per lot.
func SplitLots(shares int64, lotSize int) (lots, odd int64) {
	if lotSize < 1 {
		lotSize = 1
	}
	return shares / int64(lotSize), shares % int64(lotSize)
}

// Balance is a snapshot of one account's financial state.
type Balance struct {
	AccountID        string  `json:"account_id"`
	Currency         string  `json:"currency"`
	CashBalance      float64 `json:"cash_balance"`
	AvailableBalance float64 `json:"available_balance"`
	MarginUsed       float64 `json:"margin_used"`
	TotalEquity      float64 `json:"total_equity"`
	UnrealizedPnl    float64 `json:"unrealized_pnl"`
	RealizedPnl      float64 `json:"realized_pnl"`
}
