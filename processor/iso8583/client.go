package iso8583

import (
	"fmt"
	"strconv"

	"github.com/moov-io/iso8583"
	"github.com/moov-io/iso8583/field"
	connection "github.com/moov-io/iso8583-connection"

	"github.com/alovak/settlement-playground/internal/expiry"
	"github.com/alovak/settlement-playground/processor/models"
)

// Client speaks the playground's ISO 8583 dialect; test and dev harnesses
// use it to authorize transactions over TCP instead of the HTTP API.
type Client struct {
	conn *connection.Connection
}

func NewClient(addr string) (*Client, error) {
	c, err := connection.New(addr, Spec, readMessageLength, writeMessageLength)
	if err != nil {
		return nil, fmt.Errorf("creating iso8583 connection: %w", err)
	}
	if err := c.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to iso8583 server: %w", err)
	}

	return &Client{conn: c}, nil
}

// Authorize sends a 0100 message for the transaction and applies the 0110
// response onto it: the approval code when authorized, or the failure code
// and message otherwise.
func (c *Client) Authorize(tx *models.Transaction) error {
	var merchantName, merchantID string
	if tx.MerchantData != nil {
		merchantName = tx.MerchantData.Name
		merchantID = tx.MerchantData.NetworkID
	}

	requestMsg := iso8583.NewMessage(Spec)
	err := requestMsg.Marshal(&authorizationRequest{
		MTI:            field.NewStringValue("0100"),
		PAN:            field.NewStringValue(tx.Card.ID),
		Amount:         field.NewStringValue(fmt.Sprintf("%012d", tx.Amount)),
		Expiration:     field.NewStringValue(expiry.YYMM(int(tx.Card.ExpMonth), int(tx.Card.ExpYear))),
		MerchantID:     field.NewStringValue(merchantID),
		MerchantName:   field.NewStringValue(merchantName),
		CVV:            field.NewStringValue(tx.Card.CardCode),
		Currency:       field.NewStringValue(tx.Currency),
		CardholderName: field.NewStringValue(tx.Card.Name),
	})
	if err != nil {
		return fmt.Errorf("building authorization request: %w", err)
	}

	responseMsg, err := c.conn.Send(requestMsg)
	if err != nil {
		return fmt.Errorf("sending authorization request: %w", err)
	}

	response := authorizationResponse{}
	if err := responseMsg.Unmarshal(&response); err != nil {
		return fmt.Errorf("parsing authorization response: %w", err)
	}

	if code := stringValue(response.ResponseCode); code != approvedResponseCode {
		authorized := false
		tx.Authorized = &authorized
		tx.FailureCode, _ = strconv.Atoi(code)
		tx.FailureMessage = stringValue(response.FailureMessage)
		return nil
	}

	approved, authorized := true, true
	tx.Approved = &approved
	tx.Authorized = &authorized
	tx.ApprovalCode = stringValue(response.ApprovalCode)
	tx.FailureCode = 0
	tx.FailureMessage = ""

	return nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
