package store

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const orderIDPrefix = "ORD"

// GenerateID returns prefix followed by 8 hex characters of a random UUID.
func GenerateID(prefix string) string {
	u := uuid.New()
	return prefix + hex.EncodeToString(u[:4])
}

func formatOrderID(n int64) string {
	return fmt.Sprintf("%s%d", orderIDPrefix, n)
}
