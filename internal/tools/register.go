package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Register installs the full tool catalog on the MCP server. Tool names and
// argument schemas are the public contract of the gateway; unknown tool
// names are rejected by the SDK dispatcher before reaching any handler.
func Register(s *server.MCPServer, h *Handlers) {
	s.AddTool(
		mcp.NewTool("login",
			mcp.WithDescription("Login to the brokerage API. Arguments omitted here fall back to the TRADEGATE_* environment variables."),
			mcp.WithString("api_key", mcp.Description("Brokerage API key")),
			mcp.WithString("secret_key", mcp.Description("Brokerage API secret")),
			mcp.WithString("person_id", mcp.Description("Account holder national ID")),
			mcp.WithString("password", mcp.Description("Account password")),
		),
		h.Login,
	)

	s.AddTool(
		mcp.NewTool("logout",
			mcp.WithDescription("Logout from the brokerage API. Safe to call when already logged out."),
		),
		h.Logout,
	)

	s.AddTool(
		mcp.NewTool("get_account_info",
			mcp.WithDescription("List the brokerage accounts of the current session."),
		),
		h.GetAccountInfo,
	)

	s.AddTool(
		mcp.NewTool("check_terms_status",
			mcp.WithDescription("Check the terms-signing status of each account. signed=true means the API test is completed and the account may trade."),
		),
		h.CheckTermsStatus,
	)

	s.AddTool(
		mcp.NewTool("search_contracts",
			mcp.WithDescription("Search tradable contracts by keyword, exchange or category. Returns at most 50 results."),
			mcp.WithString("keyword", mcp.Description("Matched case-insensitively against contract name and code")),
			mcp.WithString("exchange", mcp.Description("Exchange filter, e.g. TSE")),
			mcp.WithString("category", mcp.Description("Category filter, e.g. Stock")),
		),
		h.SearchContracts,
	)

	s.AddTool(
		mcp.NewTool("get_snapshots",
			mcp.WithDescription("Get point-in-time quotes for one or more contract codes. Codes that fail to resolve are skipped."),
			mcp.WithArray("contracts",
				mcp.Description("Contract codes to quote"),
				mcp.Required(),
			),
		),
		h.GetSnapshots,
	)

	s.AddTool(
		mcp.NewTool("get_kbars",
			mcp.WithDescription("Get historical OHLCV bars for a contract. Dates are YYYY-MM-DD; the range defaults to the last 30 days."),
			mcp.WithString("contract", mcp.Description("Contract code"), mcp.Required()),
			mcp.WithString("start_date", mcp.Description("Range start, inclusive")),
			mcp.WithString("end_date", mcp.Description("Range end, inclusive")),
			mcp.WithString("timeframe", mcp.Description("Bar interval, e.g. 1D (default), 1H, 5M")),
		),
		h.GetKbars,
	)

	s.AddTool(
		mcp.NewTool("place_order",
			mcp.WithDescription("Place an order. Requires TRADEGATE_TRADING_ENABLED=true. Price 0 or omitted places a market order."),
			mcp.WithString("contract", mcp.Description("Contract code"), mcp.Required()),
			mcp.WithString("action", mcp.Description("Buy or Sell"), mcp.Required()),
			mcp.WithNumber("quantity", mcp.Description("Quantity in shares"), mcp.Required()),
			mcp.WithNumber("price", mcp.Description("Limit price; 0 or omitted for a market order")),
			mcp.WithString("order_type", mcp.Description("ROD (default), IOC or FOK")),
		),
		h.PlaceOrder,
	)

	s.AddTool(
		mcp.NewTool("cancel_order",
			mcp.WithDescription("Cancel a pending order. Requires TRADEGATE_TRADING_ENABLED=true."),
			mcp.WithString("order_id", mcp.Description("Order id returned by place_order"), mcp.Required()),
		),
		h.CancelOrder,
	)

	s.AddTool(
		mcp.NewTool("list_orders",
			mcp.WithDescription("List all orders of the current session."),
		),
		h.ListOrders,
	)

	s.AddTool(
		mcp.NewTool("get_positions",
			mcp.WithDescription("List current holdings with quantities decomposed into lots and odd shares."),
		),
		h.GetPositions,
	)

	s.AddTool(
		mcp.NewTool("get_account_balance",
			mcp.WithDescription("Get the account balance and equity figures."),
		),
		h.GetAccountBalance,
	)
}
