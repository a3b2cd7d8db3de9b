package redis

import (
	"fmt"
	"strings"

	"github.com/mcoot/rightsquest/internal/model"
)

// Key prefix for all learner data
const keyPrefix = "rightsquest"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// walletIndexKey returns the Redis key for the wallet -> user_id index.
// Wallets are indexed lowercase.
func walletIndexKey(wallet string) string {
	return fmt.Sprintf("%s:idx:wallet:%s", keyPrefix, strings.ToLower(wallet))
}

// receiptKey returns the Redis key for a PaymentReceipt
func receiptKey(ref model.TxRef) string {
	return fmt.Sprintf("%s:receipt:%s", keyPrefix, ref)
}

// receiptsForUserIndexKey returns the Redis key for the ZSET of a user's
// receipts, scored by creation time
func receiptsForUserIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:receipts_for_user:%s", keyPrefix, userID)
}
