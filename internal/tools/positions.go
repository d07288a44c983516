package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/offbeat-studio/tradegate/internal/domain"
)

type positionRow struct {
	Contract      string  `json:"contract"`
	Name          string  `json:"name"`
	Quantity      int64   `json:"quantity"`
	Lots          int64   `json:"lots"`
	OddShares     int64   `json:"odd_shares"`
	AvgPrice      float64 `json:"avg_price"`
	CurrentPrice  float64 `json:"current_price"`
	UnrealizedPnl float64 `json:"unrealized_pnl"`
	RealizedPnl   float64 `json:"realized_pnl"`
}

// GetPositions lists current holdings. Quantity is the effective holding in
// shares, the larger of today's and the prior day's quantity, decomposed
// into whole lots and odd shares at the backend's lot size.
func (h *Handlers) GetPositions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := h.session.Handle()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	positions, err := b.ListPositions(ctx)
	if err != nil {
		return errorf("failed to list positions: %v", err), nil
	}

	lotSize := b.SharesPerLot()
	rows := make([]positionRow, 0, len(positions))
	for _, p := range positions {
		shares := p.EffectiveShares()
		lots, odd := domain.SplitLots(shares, lotSize)
		rows = append(rows, positionRow{
			Contract:      p.Contract,
			Name:          p.Name,
			Quantity:      shares,
			Lots:          lots,
			OddShares:     odd,
			AvgPrice:      p.AvgPrice,
			CurrentPrice:  p.CurrentPrice,
			UnrealizedPnl: p.UnrealizedPnl,
			RealizedPnl:   p.RealizedPnl,
		})
	}

	msg := fmt.Sprintf("Found %d position(s)", len(rows))
	return successResult(msg, rows), nil
}

// GetAccountBalance reports the financial state of the default account.
func (h *Handlers) GetAccountBalance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := h.session.Handle()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	balance, err := b.AccountBalance(ctx)
	if err != nil {
		return errorf("failed to fetch account balance: %v", err), nil
	}

	msg := fmt.Sprintf("Account balance retrieved for %s", balance.AccountID)
	return successResult(msg, balance), nil
}
