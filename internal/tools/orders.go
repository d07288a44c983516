package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/offbeat-studio/tradegate/internal/broker"
	"github.com/offbeat-studio/tradegate/internal/domain"
	"github.com/offbeat-studio/tradegate/internal/session"
)

type cancelPayload struct {
	OrderID   string             `json:"order_id"`
	Status    domain.OrderStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

// PlaceOrder submits a new order. The permission gate runs before the
// session check so a disabled-trading response never leaks session state.
// Price zero or absent places a market order; order_type defaults to ROD.
func (h *Handlers) PlaceOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if ok, msg := session.CheckTradingPermission("place_order"); !ok {
		return errorResult(msg), nil
	}

	b, err := h.session.Handle()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	var missing []string
	contract := stringArg(request, "contract")
	if contract == "" {
		missing = append(missing, "contract")
	}
	action := stringArg(request, "action")
	if action == "" {
		missing = append(missing, "action")
	}
	quantity, ok := intArg(request, "quantity")
	if !ok {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		return errorf("missing required parameters: %s", strings.Join(missing, ", ")), nil
	}

	side, err := parseAction(action)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if quantity <= 0 {
		return errorf("quantity must be positive, got %d", quantity), nil
	}

	price, _ := floatArg(request, "price")
	if price < 0 {
		return errorf("price must not be negative, got %v", price), nil
	}

	orderType, err := parseOrderType(stringArg(request, "order_type"))
	if err != nil {
		return errorResult(err.Error()), nil
	}

	order, err := b.PlaceOrder(ctx, domain.OrderRequest{
		Contract:  contract,
		Action:    side,
		Quantity:  int64(quantity),
		Price:     price,
		OrderType: orderType,
	})
	if err != nil {
		return errorf("order placement failed: %v", err), nil
	}

	h.log.Info("order placed", "order_id", order.ID, "contract", order.Contract,
		"action", order.Action, "quantity", order.Quantity, "price", order.Price)
	msg := fmt.Sprintf("Order placed successfully: %s", order.ID)
	return successResult(msg, order), nil
}

// CancelOrder cancels a pending order by id. Gated like PlaceOrder.
func (h *Handlers) CancelOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if ok, msg := session.CheckTradingPermission("cancel_order"); !ok {
		return errorResult(msg), nil
	}

	b, err := h.session.Handle()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	orderID, err := requireString(request, "order_id")
	if err != nil {
		return errorResult(err.Error()), nil
	}

	order, err := b.CancelOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, broker.ErrNotFound) {
			return errorf("order not found: %s", orderID), nil
		}
		return errorf("order cancellation failed: %v", err), nil
	}

	h.log.Info("order cancelled", "order_id", order.ID)
	msg := fmt.Sprintf("Order cancelled successfully: %s", order.ID)
	return successResult(msg, cancelPayload{
		OrderID:   order.ID,
		Status:    order.Status,
		Timestamp: order.Timestamp,
	}), nil
}

// ListOrders reports all orders known to the session.
func (h *Handlers) ListOrders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := h.session.Handle()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	orders, err := b.ListOrders(ctx)
	if err != nil {
		return errorf("failed to list orders: %v", err), nil
	}

	msg := fmt.Sprintf("Found %d order(s)", len(orders))
	return successResult(msg, orders), nil
}

func parseAction(raw string) (domain.OrderAction, error) {
	switch strings.ToLower(raw) {
	case "buy":
		return domain.ActionBuy, nil
	case "sell":
		return domain.ActionSell, nil
	}
	return "", fmt.Errorf("invalid action %q, must be Buy or Sell", raw)
}

func parseOrderType(raw string) (domain.OrderType, error) {
	switch strings.ToUpper(raw) {
	case "", "ROD":
		return domain.OrderTypeROD, nil
	case "IOC":
		return domain.OrderTypeIOC, nil
	case "FOK":
		return domain.OrderTypeFOK, nil
	}
	return "", fmt.Errorf("invalid order_type %q, must be ROD, IOC or FOK", raw)
}
