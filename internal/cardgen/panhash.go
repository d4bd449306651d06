package cardgen

import (
	"crypto/hmac"
	"crypto/sha256"
)

// HashPANHMAC returns the HMAC-SHA256 of a PAN under a keyed pepper. The
// enrollment store persists and looks up this hash so raw card numbers never
// reach the database. The PAN should be normalized before hashing, and never
// logged.
func HashPANHMAC(pan string, key []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(pan))
	return h.Sum(nil)
}
