package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/alovak/settlement-playground/internal/cardgen"
	"github.com/alovak/settlement-playground/processor/models"
)

// cardgen emits a JSON array of enrolled card records suitable for the
// processor's ENROLLED_CARDS_FILE bootstrap.
func main() {
	bin := flag.String("bin", "414012", "issuer BIN for generated PANs")
	count := flag.Int("count", 5, "number of cards to generate")
	limit := flag.Int64("limit", 100000, "card limit in minor units")
	bank := flag.String("bank", "Cyberbank", "authorizing bank name")
	currency := flag.String("currency", "USD", "ISO 4217 currency code")
	out := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	cards, err := generate(*bin, *count, *limit, *bank, *currency)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if *out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func generate(bin string, count int, limit int64, bank, currency string) ([]models.EnrolledCard, error) {
	expiry := time.Now().AddDate(2, 0, 0)

	cards := make([]models.EnrolledCard, 0, count)
	for i := 0; i < count; i++ {
		pan, err := cardgen.GeneratePAN(bin, "")
		if err != nil {
			return nil, fmt.Errorf("generating pan: %w", err)
		}
		code, err := cardgen.RandomDigits(3)
		if err != nil {
			return nil, fmt.Errorf("generating card code: %w", err)
		}
		zip, err := cardgen.RandomDigits(5)
		if err != nil {
			return nil, fmt.Errorf("generating zip code: %w", err)
		}

		cards = append(cards, models.EnrolledCard{
			ID:              pan,
			CustomerID:      "cust_" + uuid.New().String(),
			Name:            fmt.Sprintf("Test Cardholder %d", i+1),
			AuthorizingBank: bank,
			CardCode:        code,
			CardLimit:       models.FlexInt(limit),
			Currency:        currency,
			ExpMonth:        models.FlexInt(expiry.Month()),
			ExpYear:         models.FlexInt(expiry.Year()),
			ZipCode:         zip,
		})
	}

	return cards, nil
}
