package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// kbarTimeout bounds a historical-bar fetch.
	kbarTimeout = 30 * time.Second

	// kbarDefaultRange is applied when no start date is given.
	kbarDefaultRange = 30 * 24 * time.Hour

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

type kbarRow struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// GetSnapshots fetches point-in-time quotes for the requested contract
// codes. A failing code is logged and skipped; the reported count covers
// only the codes that resolved.
func (h *Handlers) GetSnapshots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := h.session.Handle()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	codes := stringSliceArg(request, "contracts")
	if len(codes) == 0 {
		return errorResult("missing required parameter: contracts"), nil
	}

	snapshots := make([]any, 0, len(codes))
	for _, code := range codes {
		snap, err := b.GetSnapshot(ctx, code)
		if err != nil {
			h.log.Warn("snapshot fetch failed", "code", code, "error", err)
			continue
		}
		snapshots = append(snapshots, snap)
	}

	msg := fmt.Sprintf("Retrieved %d snapshot(s)", len(snapshots))
	return successResult(msg, snapshots), nil
}

// GetKbars fetches OHLCV bars for one contract. The date range defaults to
// the last 30 days and the delegated call is bounded by kbarTimeout.
func (h *Handlers) GetKbars(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := h.session.Handle()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	contract, err := requireString(request, "contract")
	if err != nil {
		return errorResult(err.Error()), nil
	}

	end := stringArg(request, "end_date")
	if end == "" {
		end = time.Now().Format(dateLayout)
	}
	start := stringArg(request, "start_date")
	if start == "" {
		start = time.Now().Add(-kbarDefaultRange).Format(dateLayout)
	}
	timeframe := stringArg(request, "timeframe")
	if timeframe == "" {
		timeframe = "1D"
	}

	fetchCtx, cancel := context.WithTimeout(ctx, kbarTimeout)
	defer cancel()

	bars, err := b.GetKbars(fetchCtx, contract, start, end, timeframe)
	if err != nil {
		return errorf("k-bar fetch failed for %s: %v", contract, err), nil
	}

	rows := make([]kbarRow, 0, len(bars))
	for _, bar := range bars {
		rows = append(rows, kbarRow{
			Date:   bar.Ts.Format(dateTimeLayout),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	msg := fmt.Sprintf("Retrieved %d k-bar(s) for %s (%s to %s)", len(rows), contract, start, end)
	return successResult(msg, rows), nil
}
