package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateContinuationID creates a human-readable, unique continuation ID.
// Format: {action}-{shipSymbolWithoutAgentPrefix}-{8charHexUUID}
//
// Example:
//   - Input: action="trade", shipSymbol="AGENT-1"
//   - Output: "trade-AGENT-1-a3f8e2b1"
func GenerateContinuationID(action, shipSymbol string) string {
	return strings.ToLower(action) + "-" + stripAgentPrefix(shipSymbol) + "-" + shortUUID()
}

// stripAgentPrefix keeps the last two hyphen-separated segments of a ship symbol.
//   - "MY-AGENT-MINER-2" -> "MINER-2"
//   - "AGENT-1" -> "AGENT-1"
func stripAgentPrefix(shipSymbol string) string {
	parts := strings.Split(shipSymbol, "-")
	if len(parts) <= 2 {
		return shipSymbol
	}
	return strings.Join(parts[len(parts)-2:], "-")
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
