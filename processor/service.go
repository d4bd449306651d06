package processor

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/alovak/settlement-playground/internal/cardval"
	"github.com/alovak/settlement-playground/internal/expiry"
	"github.com/alovak/settlement-playground/processor/models"
)

// Service runs transactions through the validation and authorization
// lifecycle and owns the settlement flow over the pending pool.
type Service struct {
	cfg        *Config
	pending    *PendingStore
	enrollment *EnrollmentStore
	logger     *slog.Logger
}

func NewService(logger *slog.Logger, cfg *Config, pending *PendingStore, enrollment *EnrollmentStore) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Service{
		cfg:        cfg,
		pending:    pending,
		enrollment: enrollment,
		logger:     logger.With(slog.String("component", "processor")),
	}
}

// Validate runs a transaction through format validation and authorization
// and, when both pass, stores it in the pending pool. The transaction is
// returned with its status fields filled in either way.
func (s *Service) Validate(tx *models.Transaction) *models.Transaction {
	if s.ValidateTransaction(tx) && s.AuthorizeTransaction(tx) {
		s.pending.Store(tx)
		pendingTransactions.Set(float64(s.pending.Size()))
	}
	return tx
}

// ValidateTransaction checks the card format, field completeness, the amount
// bound and the expiration date, in that strict order, stopping at the first
// failure so the earliest check's failure code always wins.
func (s *Service) ValidateTransaction(tx *models.Transaction) bool {
	switch {
	case !s.validateCard(tx):
		s.decline(tx, 401, "Card is not valid")
	case !tx.ReadyForRequest():
		s.decline(tx, 402, "Missing information for transaction approval")
	case tx.Amount < 0 || int64(tx.Amount) > s.cfg.MaxAmount:
		s.decline(tx, 405, "Transaction amount threshold exceeded")
	case !expiry.Valid(int(tx.Card.ExpMonth), int(tx.Card.ExpYear), time.Now(), s.cfg.MaxFutureYears):
		s.decline(tx, 408, "Invalid expiration date")
	default:
		approved := true
		tx.Approved = &approved
		tx.FailureCode = 0
		tx.FailureMessage = ""
		transactionsValidated.WithLabelValues("approved").Inc()
		return true
	}

	transactionsValidated.WithLabelValues("declined").Inc()
	return false
}

// AuthorizeTransaction is the second, independent gate. In permissive mode
// (authorization checks disabled) every transaction is authorized with a
// fresh approval code. Otherwise the card must be enrolled, the presented
// card code must match the enrollment record and the amount must be below
// the account limit.
func (s *Service) AuthorizeTransaction(tx *models.Transaction) bool {
	if !s.cfg.AuthorizationChecks {
		s.authorize(tx)
		return true
	}

	customerID, err := s.enrollment.CustomerID(tx.Card.ID)
	if err != nil {
		s.declineAuthorization(tx, 401, "Credit card account not found")
		return false
	}

	match, err := s.enrollment.CheckCode(customerID, tx.Card.CardCode)
	if err != nil || !match {
		s.declineAuthorization(tx, 411, "Card code incorrect")
		return false
	}

	limit, err := s.enrollment.Limit(customerID)
	if err != nil || int64(tx.Amount) >= limit {
		s.declineAuthorization(tx, 405, "Account threshold exceeded")
		return false
	}

	s.authorize(tx)
	return true
}

// Enroll adds a card record to the enrollment store after running the same
// checks as the bootstrap loader.
func (s *Service) Enroll(card *models.EnrolledCard) error {
	return s.enrollment.Enroll(card)
}

// PendingCount returns the number of transactions awaiting settlement.
func (s *Service) PendingCount() int {
	return s.pending.Size()
}

// PendingKeys returns the approval codes of transactions awaiting settlement.
func (s *Service) PendingKeys() []string {
	return s.pending.Keys()
}

// PendingTransactions returns the full transactions awaiting settlement.
func (s *Service) PendingTransactions() []*models.Transaction {
	return s.pending.Transactions()
}

// validateCard checks the card number format and writes the derived vendor
// and validity fields onto the card.
func (s *Service) validateCard(tx *models.Transaction) bool {
	result := cardval.ValidateCard(tx.Card.ID, tx.Card.CardCode)

	valid := result.Valid
	tx.Card.Valid = &valid
	tx.Card.Type = result.Vendor

	return result.Valid
}

func (s *Service) authorize(tx *models.Transaction) {
	authorized := true
	tx.Authorized = &authorized
	tx.ApprovalCode = "appr_" + uuid.New().String()
	transactionsAuthorized.WithLabelValues("authorized").Inc()
}

func (s *Service) decline(tx *models.Transaction, code int, message string) {
	approved := false
	tx.Approved = &approved
	tx.FailureCode = code
	tx.FailureMessage = message
}

func (s *Service) declineAuthorization(tx *models.Transaction, code int, message string) {
	authorized := false
	tx.Authorized = &authorized
	tx.FailureCode = code
	tx.FailureMessage = message
	transactionsAuthorized.WithLabelValues("declined").Inc()
}
