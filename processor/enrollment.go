package processor

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"golang.org/x/exp/slog"

	"github.com/alovak/settlement-playground/internal/cardgen"
	"github.com/alovak/settlement-playground/internal/cardval"
	"github.com/alovak/settlement-playground/internal/expiry"
	"github.com/alovak/settlement-playground/processor/models"
)

var ErrConflict = fmt.Errorf("conflict")

// EnrollmentStore is the read-mostly lookup of enrolled cards. Every record
// is reachable both by card id and by customer id: cardIndex maps a card id
// to the owning customer, records holds the record per customer id.
//
// The in-memory backend is the default. With a *sql.DB the lookups go to
// Postgres instead, where PANs are stored only as an HMAC hash.
type EnrollmentStore struct {
	mu        sync.RWMutex
	records   map[string]*models.EnrolledCard
	cardIndex map[string]string

	db      *sql.DB
	hashKey []byte
	logger  *slog.Logger
}

func NewEnrollmentStore(logger *slog.Logger) *EnrollmentStore {
	return &EnrollmentStore{
		records:   make(map[string]*models.EnrolledCard),
		cardIndex: make(map[string]string),
		logger:    logger.With(slog.String("component", "enrollment")),
	}
}

// NewPGEnrollmentStore constructs a db-backed enrollment store.
func NewPGEnrollmentStore(db *sql.DB, hashKey []byte, logger *slog.Logger) *EnrollmentStore {
	return &EnrollmentStore{
		db:      db,
		hashKey: hashKey,
		logger:  logger.With(slog.String("component", "enrollment")),
	}
}

// LoadFile bootstraps the store from a JSON array of enrollment records.
// Invalid records are skipped with a diagnostic. A missing or unparseable
// file is reported to the caller, who is expected to log it and carry on
// with whatever is already in the store.
func (e *EnrollmentStore) LoadFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading enrolled cards file: %w", err)
	}

	var cards []*models.EnrolledCard
	if err := json.Unmarshal(raw, &cards); err != nil {
		return 0, fmt.Errorf("parsing enrolled cards file: %w", err)
	}

	loaded := 0
	for i, card := range cards {
		if err := e.Enroll(card); err != nil {
			// a null array element decodes to a nil record
			cardID := ""
			if card != nil {
				cardID = card.ID
			}
			e.logger.Info("skipping enrolled card record",
				slog.Int("index", i),
				slog.String("card", maskPAN(cardID)),
				slog.Any("err", err),
			)
			continue
		}
		loaded++
	}
	return loaded, nil
}

// Enroll validates and adds one card record, applying the same rules as the
// bootstrap file: all fields present, a well-formed card number and an
// acceptable expiry. A card that is already enrolled yields ErrConflict.
func (e *EnrollmentStore) Enroll(card *models.EnrolledCard) error {
	if err := checkEnrollment(card); err != nil {
		return err
	}

	if e.db != nil {
		hash := cardgen.HashPANHMAC(cardgen.NormalizePAN(card.ID), e.hashKey)
		_, err := e.db.ExecContext(context.Background(), `
			INSERT INTO processor.enrolled_cards(pan_hash, customer_id, name, authorizing_bank, card_code, card_limit, currency, exp_month, exp_year, zip_code)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, hash, card.CustomerID, card.Name, card.AuthorizingBank, card.CardCode,
			int64(card.CardLimit), card.Currency, int(card.ExpMonth), int(card.ExpYear), card.ZipCode)
		if isUniqueViolation(err) {
			return fmt.Errorf("card already enrolled: %w", ErrConflict)
		}
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.cardIndex[card.ID]; ok {
		return fmt.Errorf("card already enrolled: %w", ErrConflict)
	}
	e.records[card.CustomerID] = card
	e.cardIndex[card.ID] = card.CustomerID

	return nil
}

// Enrolled reports whether the card id belongs to an enrolled card.
func (e *EnrollmentStore) Enrolled(cardID string) bool {
	_, err := e.CustomerID(cardID)
	return err == nil
}

// CustomerID resolves a card id to the owning customer id, or ErrNotFound.
func (e *EnrollmentStore) CustomerID(cardID string) (string, error) {
	if e.db != nil {
		hash := cardgen.HashPANHMAC(cardgen.NormalizePAN(cardID), e.hashKey)
		row := e.db.QueryRowContext(context.Background(),
			`SELECT customer_id FROM processor.enrolled_cards WHERE pan_hash=$1`, hash)
		var customerID string
		if err := row.Scan(&customerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", fmt.Errorf("card %s: %w", maskPAN(cardID), ErrNotFound)
			}
			return "", err
		}
		return customerID, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	customerID, ok := e.cardIndex[cardID]
	if !ok {
		return "", fmt.Errorf("card %s: %w", maskPAN(cardID), ErrNotFound)
	}
	return customerID, nil
}

// CheckCode compares a presented card code against the enrollment record.
func (e *EnrollmentStore) CheckCode(customerID, code string) (bool, error) {
	if e.db != nil {
		row := e.db.QueryRowContext(context.Background(),
			`SELECT card_code FROM processor.enrolled_cards WHERE customer_id=$1`, customerID)
		var stored string
		if err := row.Scan(&stored); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
			}
			return false, err
		}
		return stored == code, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	record, ok := e.records[customerID]
	if !ok {
		return false, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	return record.CardCode == code, nil
}

// Limit returns the enrolled card's limit in minor currency units.
func (e *EnrollmentStore) Limit(customerID string) (int64, error) {
	if e.db != nil {
		row := e.db.QueryRowContext(context.Background(),
			`SELECT card_limit FROM processor.enrolled_cards WHERE customer_id=$1`, customerID)
		var limit int64
		if err := row.Scan(&limit); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
			}
			return 0, err
		}
		return limit, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	record, ok := e.records[customerID]
	if !ok {
		return 0, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	return int64(record.CardLimit), nil
}

// Size returns the number of enrolled cards.
func (e *EnrollmentStore) Size() int {
	if e.db != nil {
		row := e.db.QueryRowContext(context.Background(),
			`SELECT count(*) FROM processor.enrolled_cards`)
		var n int
		if err := row.Scan(&n); err != nil {
			return 0
		}
		return n
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.records)
}

// Ping verifies the backing store is reachable.
func (e *EnrollmentStore) Ping(ctx context.Context) error {
	if e.db != nil {
		return e.db.PingContext(ctx)
	}
	return nil
}

func checkEnrollment(card *models.EnrolledCard) error {
	if card == nil {
		return fmt.Errorf("empty enrollment record")
	}

	required := []struct {
		name string
		ok   bool
	}{
		{"id", card.ID != ""},
		{"customer_id", card.CustomerID != ""},
		{"name", card.Name != ""},
		{"authorizing_bank", card.AuthorizingBank != ""},
		{"card_code", card.CardCode != ""},
		{"card_limit", card.CardLimit != 0},
		{"currency", card.Currency != ""},
		{"exp_month", card.ExpMonth != 0},
		{"exp_year", card.ExpYear != 0},
		{"zip_code", card.ZipCode != ""},
	}
	for _, field := range required {
		if !field.ok {
			return fmt.Errorf("missing field %s", field.name)
		}
	}

	if !cardval.ValidateCard(card.ID, card.CardCode).Valid {
		return fmt.Errorf("card id malformed")
	}
	if !expiry.Valid(int(card.ExpMonth), int(card.ExpYear), time.Now(), expiry.DefaultMaxFutureYears) {
		return fmt.Errorf("expiry date is not accepted")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqe *pq.Error
	if errors.As(err, &pqe) && pqe.Code == "23505" {
		return true
	}
	var pge *pgconn.PgError
	if errors.As(err, &pge) && pge.Code == "23505" {
		return true
	}
	return false
}

func maskPAN(pan string) string {
	return "****" + cardgen.LastN(cardgen.NormalizePAN(pan), 4)
}
