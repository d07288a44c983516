package session

import (
	"fmt"
	"os"
	"strings"
)

// EnvTradingEnabled gates every mutating brokerage operation.
const EnvTradingEnabled = "TRADEGATE_TRADING_ENABLED"

// CheckTradingPermission reports whether the mutating operation op may run.
// The environment variable is re-read on every call so the gate can be
// flipped without restarting the server. Accepted truthy values are
// "true", "1", "yes" and "on", case-insensitive; anything else denies.
func CheckTradingPermission(op string) (bool, string) {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(EnvTradingEnabled)))
	switch raw {
	case "true", "1", "yes", "on":
		return true, ""
	}
	return false, fmt.Sprintf(
		"Trading operation '%s' is disabled. Set %s=true to enable trading operations.",
		op, EnvTradingEnabled)
}
