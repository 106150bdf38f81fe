package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// BarcodeAttempts bounds regeneration after a unique-constraint collision.
const BarcodeAttempts = 3

// NewBarcode returns prefix followed by 10 upper-case hex characters.
func NewBarcode(prefix string) (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate barcode: %w", err)
	}
	return prefix + strings.ToUpper(hex.EncodeToString(b)), nil
}
