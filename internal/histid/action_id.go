package histid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"lending-pool-indexer/internal/domain"
)

// ComputeActionID computes a deterministic history action ID using SHA256.
// Formula: SHA256(block_number|tx_index|log_index|action_kind)
// Returns hex-encoded hash (64 characters). Re-processing the same event
// stream yields the same identifiers, which makes replay idempotent.
func ComputeActionID(meta domain.EventMeta, kind domain.ActionKind) string {
	data := fmt.Sprintf("%d|%d|%d|%s",
		meta.BlockNumber,
		meta.TxIndex,
		meta.LogIndex,
		string(kind),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// Disambiguate derives an alternate identifier when the primary ID
// already denotes an existing action of the same kind. The prior record
// is never overwritten; both actions remain separately queryable.
func Disambiguate(id string) string {
	return id + "0"
}
