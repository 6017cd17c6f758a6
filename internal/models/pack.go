package models

// Pack terminal statuses carried in queue payloads. The pack pusher routes
// on these; a payload with any other status never reaches the cloud.
const (
	PackStatusDepleted = "DEPLETED"
	PackStatusReturned = "RETURNED"
)

// Depletion reasons accepted by the cloud. A missing or unknown reason is a
// hard validation failure; it is never substituted with a fallback value.
var depletionReasons = map[string]bool{
	"SOLD_OUT": true,
	"DAMAGED":  true,
	"STOLEN":   true,
	"EXPIRED":  true,
	"OTHER":    true,
}

// Return reasons accepted by the cloud. Same rule: no defaulting.
var returnReasons = map[string]bool{
	"GAME_CLOSED":  true,
	"DAMAGED":      true,
	"SLOW_SELLING": true,
	"RECALLED":     true,
	"OTHER":        true,
}

// ValidDepletionReason reports whether s is a known depletion reason.
func ValidDepletionReason(s string) bool {
	return depletionReasons[s]
}

// ValidReturnReason reports whether s is a known return reason.
func ValidReturnReason(s string) bool {
	return returnReasons[s]
}
