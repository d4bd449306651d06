package cardgen

import (
	"bytes"
	"testing"
)

func TestHashPANHMAC(t *testing.T) {
	key := []byte("pepper")

	a := HashPANHMAC("4242424242424242", key)
	b := HashPANHMAC("4242424242424242", key)
	if !bytes.Equal(a, b) {
		t.Fatal("hash must be deterministic for the same pan and key")
	}
	if len(a) != 32 {
		t.Fatalf("hash length = %d; want 32", len(a))
	}

	if bytes.Equal(a, HashPANHMAC("4242424242424243", key)) {
		t.Fatal("different pans must hash differently")
	}
	if bytes.Equal(a, HashPANHMAC("4242424242424242", []byte("other"))) {
		t.Fatal("different keys must hash differently")
	}
}
