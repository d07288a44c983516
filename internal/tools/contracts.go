package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/offbeat-studio/tradegate/internal/domain"
)

// searchLimit caps search_contracts results.
const searchLimit = 50

// SearchContracts filters the contract catalog by keyword, exchange and
// category. All filters are optional; results are capped at searchLimit.
func (h *Handlers) SearchContracts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := h.session.Handle()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	filter := domain.ContractFilter{
		Keyword:  stringArg(request, "keyword"),
		Exchange: stringArg(request, "exchange"),
		Category: stringArg(request, "category"),
	}

	contracts, err := b.SearchContracts(ctx, filter)
	if err != nil {
		return errorf("contract search failed: %v", err), nil
	}

	truncated := false
	if len(contracts) > searchLimit {
		contracts = contracts[:searchLimit]
		truncated = true
	}

	msg := fmt.Sprintf("Found %d contract(s)", len(contracts))
	if truncated {
		msg = fmt.Sprintf("Found %d contract(s) (showing first %d)", len(contracts), searchLimit)
	}
	return successResult(msg, contracts), nil
}
