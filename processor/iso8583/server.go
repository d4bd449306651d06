package iso8583

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/moov-io/iso8583"
	"github.com/moov-io/iso8583/field"
	connection "github.com/moov-io/iso8583-connection"
	"golang.org/x/exp/slog"

	"github.com/alovak/settlement-playground/internal/expiry"
	"github.com/alovak/settlement-playground/processor/models"
)

// Authorizer runs an inbound transaction through validation, authorization
// and the pending pool, filling in the transaction's status fields.
type Authorizer interface {
	Validate(tx *models.Transaction) *models.Transaction
}

// Server accepts ISO 8583 connections and runs inbound 0100 authorization
// requests through the processor pipeline, replying with 0110 messages.
type Server struct {
	// Addr is the listener address, resolved once Start returns.
	Addr string

	logger    *slog.Logger
	addr      string
	ln        net.Listener
	wg        *sync.WaitGroup
	closeCh   chan struct{}
	processor Authorizer
}

func NewServer(logger *slog.Logger, addr string, processor Authorizer) *Server {
	return &Server{
		logger:    logger.With(slog.String("component", "iso8583-server")),
		addr:      addr,
		wg:        &sync.WaitGroup{},
		closeCh:   make(chan struct{}),
		processor: processor,
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening tcp port: %w", err)
	}
	s.ln = ln
	s.Addr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop()
	}()

	s.logger.Info("iso8583 server started", slog.String("addr", s.Addr))
	return nil
}

// Close stops accepting connections and waits for in-flight handlers.
func (s *Server) Close() error {
	close(s.closeCh)
	if s.ln != nil {
		s.ln.Close()
	}
	s.wg.Wait()

	s.logger.Info("iso8583 server stopped")
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
			default:
				s.logger.Error("accepting connection", "err", err)
			}
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	c, err := connection.NewFrom(
		conn,
		Spec,
		readMessageLength,
		writeMessageLength,
		connection.InboundMessageHandler(s.handleMessage),
	)
	if err != nil {
		s.logger.Error("creating iso8583 connection", "err", err)
		conn.Close()
		return
	}

	select {
	case <-s.closeCh:
		c.Close()
	case <-c.Done():
	}
}

func (s *Server) handleMessage(c *connection.Connection, message *iso8583.Message) {
	request := authorizationRequest{}
	if err := message.Unmarshal(&request); err != nil {
		s.logger.Error("unmarshaling authorization request", "err", err)
		s.reply(c, "400", "", "Malformed authorization request")
		return
	}

	tx, err := s.transactionFromRequest(&request)
	if err != nil {
		s.logger.Error("building transaction from request", "err", err)
		s.reply(c, "400", "", err.Error())
		return
	}

	s.processor.Validate(tx)

	code := approvedResponseCode
	if tx.FailureCode != 0 {
		code = strconv.Itoa(tx.FailureCode)
	}
	s.reply(c, code, tx.ApprovalCode, tx.FailureMessage)
}

func (s *Server) reply(c *connection.Connection, code, approvalCode, message string) {
	response := iso8583.NewMessage(Spec)
	err := response.Marshal(&authorizationResponse{
		MTI:            field.NewStringValue("0110"),
		ApprovalCode:   field.NewStringValue(approvalCode),
		ResponseCode:   field.NewStringValue(code),
		FailureMessage: field.NewStringValue(message),
	})
	if err != nil {
		s.logger.Error("building authorization response", "err", err)
		return
	}

	if err := c.Reply(response); err != nil {
		s.logger.Error("sending authorization response", "err", err)
	}
}

func (s *Server) transactionFromRequest(request *authorizationRequest) (*models.Transaction, error) {
	month, year, err := expiry.ParseYYMM(stringValue(request.Expiration))
	if err != nil {
		return nil, fmt.Errorf("parsing expiration date: %w", err)
	}

	amount, err := strconv.ParseInt(stringValue(request.Amount), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing transaction amount: %w", err)
	}

	tx := models.NewTransaction(
		stringValue(request.CardholderName),
		stringValue(request.PAN),
		stringValue(request.CVV),
		month,
		year,
		stringValue(request.Currency),
	)
	tx.SetAmount(amount, stringValue(request.Currency))
	tx.SetMerchant(stringValue(request.MerchantName), stringValue(request.MerchantID))

	return tx, nil
}
