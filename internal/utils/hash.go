package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the lowercase hex SHA-256 of the UTF-8 bytes of s.
// No normalization is applied, so visually identical strings with different
// code points hash differently.
func SHA256Hex(s string) string {
	return CalculateDataSHA256([]byte(s))
}

// CalculateDataSHA256 returns the lowercase hex SHA-256 of data
func CalculateDataSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
