package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/offbeat-studio/tradegate/internal/domain"
)

type loginPayload struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Accounts []domain.Account `json:"accounts"`
}

// Login connects the session using the supplied credentials. Omitted
// arguments fall back to the TRADEGATE_* environment variables.
func (h *Handlers) Login(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	creds := domain.Credentials{
		APIKey:    stringArg(request, "api_key"),
		SecretKey: stringArg(request, "secret_key"),
		PersonID:  stringArg(request, "person_id"),
		Password:  stringArg(request, "password"),
	}

	accounts, err := h.session.Login(ctx, creds)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	msg := fmt.Sprintf("Login successful, %d account(s) available", len(accounts))
	return successResult(msg, loginPayload{
		Success:  true,
		Message:  "Login successful",
		Accounts: accounts,
	}), nil
}

// Logout disconnects the session. Calling it while already disconnected
// succeeds with an "Already logged out" message.
func (h *Handlers) Logout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := h.session.Logout(ctx)
	if !status.Success {
		return errorResult(status.Message), nil
	}
	return successResult(status.Message, status), nil
}

// GetAccountInfo lists the brokerage accounts behind the session.
func (h *Handlers) GetAccountInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := h.session.Handle()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	accounts, err := b.ListAccounts(ctx)
	if err != nil {
		return errorf("failed to list accounts: %v", err), nil
	}

	msg := fmt.Sprintf("Found %d account(s)", len(accounts))
	return successResult(msg, accounts), nil
}

// CheckTermsStatus reports the terms-signing status per account. An account
// with signed=true has completed the broker's API test requirement and may
// trade through the API.
func (h *Handlers) CheckTermsStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := h.session.Handle()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	accounts, err := b.ListAccounts(ctx)
	if err != nil {
		return errorf("failed to check terms status: %v", err), nil
	}

	signed := 0
	for _, a := range accounts {
		if a.Signed {
			signed++
		}
	}
	msg := fmt.Sprintf(
		"Terms status: %d of %d account(s) signed. signed=true means the API test is completed and the account may trade.",
		signed, len(accounts))
	return successResult(msg, accounts), nil
}
