package checkout

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"
)

const (
	orderIDPrefix   = "CMSHP"
	orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderIDSuffix   = 6
	orderIDRetries  = 10
)

// newCustomOrderID builds a human-readable order identifier:
// prefix + year + random alphanumeric suffix, e.g. CMSHP2024X7K3QD.
func newCustomOrderID(now time.Time) (string, error) {
	buf := make([]byte, orderIDSuffix)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("order id entropy: %w", err)
	}
	for i := range buf {
		buf[i] = orderIDAlphabet[int(buf[i])%len(orderIDAlphabet)]
	}
	return fmt.Sprintf("%s%d%s", orderIDPrefix, now.Year(), buf), nil
}

// uniqueOrderID retries the generator against existence checks until a
// collision-free value is found
func uniqueOrderID(ctx context.Context, orders OrderStore, now time.Time) (string, error) {
	for i := 0; i < orderIDRetries; i++ {
		id, err := newCustomOrderID(now)
		if err != nil {
			return "", err
		}
		exists, err := orders.CustomIDExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("order id lookup: %w", err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique order id after %d attempts", orderIDRetries)
}
