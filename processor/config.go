package processor

import (
	"github.com/alovak/settlement-playground/internal/expiry"
)

// Config is the configuration for the processor application.
type Config struct {
	HTTPAddr    string
	ISO8583Addr string

	// AuthorizationChecks switches authorization from the permissive mode,
	// where every validated transaction gets a fresh approval code, to
	// lookups against the enrolled-cards store.
	AuthorizationChecks bool

	// MaxAmount is the inclusive upper bound for a transaction amount in
	// minor currency units; amounts above it fail validation with code 405.
	MaxAmount int64

	// MaxFutureYears bounds how far ahead a card expiry may lie.
	MaxFutureYears int

	// EnrolledCardsFile is a JSON bootstrap file for the enrollment store.
	// Load problems are logged and the processor starts with whatever made
	// it into the store.
	EnrolledCardsFile string

	// EnrollmentDSN switches the enrollment store to the Postgres backend
	// when non-empty.
	EnrollmentDSN string

	// PANHashKey peppers the HMAC under which PANs are stored in Postgres.
	PANHashKey string
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:       "localhost:8000",
		ISO8583Addr:    "localhost:8583",
		MaxAmount:      500000,
		MaxFutureYears: expiry.DefaultMaxFutureYears,
		PANHashKey:     "dev-secret-pepper",
	}
}
