package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewTransaction(t *testing.T) {
	tx := NewTransaction("Ann Cardholder", "4242424242424242", "123", 12, 2030, "USD")

	if !strings.HasPrefix(tx.ID, "auth_") {
		t.Fatalf("transaction id %q should start with auth_", tx.ID)
	}
	if tx.Card.ID != "4242424242424242" || tx.Card.Currency != "USD" {
		t.Fatalf("card not filled in: %+v", tx.Card)
	}
}

func TestReadyForRequest(t *testing.T) {
	base := func() *Transaction {
		tx := NewTransaction("Ann Cardholder", "4242424242424242", "123", 12, 2030, "USD")
		tx.SetAmount(1999, "USD")
		tx.SetMerchant("Coffee Corner", "net_1")
		return tx
	}

	if !base().ReadyForRequest() {
		t.Fatal("complete transaction should be ready")
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"no card id", func(tx *Transaction) { tx.Card.ID = "" }},
		{"no cardholder name", func(tx *Transaction) { tx.Card.Name = "" }},
		{"no card code", func(tx *Transaction) { tx.Card.CardCode = "" }},
		{"no expiry", func(tx *Transaction) { tx.Card.ExpMonth = 0 }},
		{"no merchant", func(tx *Transaction) { tx.MerchantData = nil }},
		{"no network id", func(tx *Transaction) { tx.MerchantData.NetworkID = "" }},
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }},
		{"negative amount", func(tx *Transaction) { tx.Amount = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := base()
			tt.mutate(tx)
			if tx.ReadyForRequest() {
				t.Error("transaction should not be ready")
			}
		})
	}
}

func TestTransactionJSONOmitsUndecidedOutcomes(t *testing.T) {
	tx := NewTransaction("Ann Cardholder", "4242424242424242", "123", 12, 2030, "USD")

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"approved", "authorized", "failure_code", "settlement_id"} {
		if strings.Contains(string(data), `"`+field+`"`) {
			t.Errorf("undecided field %s should be omitted: %s", field, data)
		}
	}
}

func TestFlexIntUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want FlexInt
		err  bool
	}{
		{`12`, 12, false},
		{`"12"`, 12, false},
		{`" 5000 "`, 5000, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"abc"`, 0, true},
	}

	for _, tt := range tests {
		var f FlexInt
		err := json.Unmarshal([]byte(tt.in), &f)
		if tt.err {
			if err == nil {
				t.Errorf("unmarshal %s expected error", tt.in)
			}
			continue
		}
		if err != nil || f != tt.want {
			t.Errorf("unmarshal %s = %d, %v; want %d", tt.in, f, err, tt.want)
		}
	}
}

func TestSettlementSettled(t *testing.T) {
	s := NewSettlement()
	if s.Settled() {
		t.Fatal("fresh settlement should not be settled")
	}
	s.SettlementID = "settle_abc"
	if !s.Settled() {
		t.Fatal("settlement with a minted id should be settled")
	}
}
