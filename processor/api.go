package processor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alovak/settlement-playground/processor/models"
)

// API is the HTTP surface of the processor.
type API struct {
	processor *Service
}

func NewAPI(processor *Service) *API {
	return &API{
		processor: processor,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Get("/hello", a.hello)

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", a.validate)
		r.Post("/settle", a.settle)
		r.Post("/store", a.listPending)
	})

	r.Post("/dev/enrollments", a.enroll)
}

func (a *API) hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte("<h3>Hello!</h3>\n"))
}

// validate runs one transaction through validation and authorization and
// returns it with the status fields filled in. Failures are part of the
// payload, not HTTP errors; only an unparseable body is a client error.
func (a *API) validate(w http.ResponseWriter, r *http.Request) {
	tx := &models.Transaction{}
	if err := json.NewDecoder(r.Body).Decode(tx); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.processor.Validate(tx)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tx)
}

// settle takes a batch of transactions and returns the settlement object.
func (a *API) settle(w http.ResponseWriter, r *http.Request) {
	var transactions []*models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&transactions); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	settlement := a.processor.Settle(transactions)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settlement)
}

// listPending returns the approval codes awaiting settlement, or the full
// transactions when the request body asks for verbose output. An empty body
// is fine and means the key list.
func (a *API) listPending(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Verbose bool `json:"verbose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if req.Verbose {
		json.NewEncoder(w).Encode(a.processor.PendingTransactions())
		return
	}
	json.NewEncoder(w).Encode(a.processor.PendingKeys())
}

func (a *API) enroll(w http.ResponseWriter, r *http.Request) {
	card := &models.EnrolledCard{}
	if err := json.NewDecoder(r.Body).Decode(card); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.processor.Enroll(card); err != nil {
		if errors.Is(err, ErrConflict) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
