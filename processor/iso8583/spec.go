package iso8583

import (
	"fmt"
	"io"

	"github.com/moov-io/iso8583"
	"github.com/moov-io/iso8583/encoding"
	"github.com/moov-io/iso8583/field"
	"github.com/moov-io/iso8583/network"
	"github.com/moov-io/iso8583/padding"
	"github.com/moov-io/iso8583/prefix"
)

// Spec is the playground's private ISO 8583 dialect: ASCII fields behind a
// binary 2-byte length header. DE39 carries the processor's three-digit
// result code directly; "000" means approved and authorized.
var Spec = &iso8583.MessageSpec{
	Name: "Settlement Playground ISO 8583",
	Fields: map[int]field.Field{
		0: field.NewString(&field.Spec{
			Length:      4,
			Description: "Message Type Indicator",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
		1: field.NewBitmap(&field.Spec{
			Description: "Bitmap",
			Enc:         encoding.BytesToASCIIHex,
			Pref:        prefix.Hex.Fixed,
		}),
		2: field.NewString(&field.Spec{
			Length:      19,
			Description: "Primary Account Number",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.LL,
		}),
		4: field.NewString(&field.Spec{
			Length:      12,
			Description: "Transaction Amount",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
			Pad:         padding.Left('0'),
		}),
		14: field.NewString(&field.Spec{
			Length:      4,
			Description: "Expiration Date (YYMM)",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
		38: field.NewString(&field.Spec{
			Length:      48,
			Description: "Approval Code",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.LL,
		}),
		39: field.NewString(&field.Spec{
			Length:      3,
			Description: "Response Code",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
		42: field.NewString(&field.Spec{
			Length:      15,
			Description: "Card Acceptor Identification",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.LL,
		}),
		43: field.NewString(&field.Spec{
			Length:      40,
			Description: "Card Acceptor Name",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.LL,
		}),
		44: field.NewString(&field.Spec{
			Length:      99,
			Description: "Additional Response Data",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.LL,
		}),
		48: field.NewString(&field.Spec{
			Length:      4,
			Description: "Card Verification Value",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.LL,
		}),
		49: field.NewString(&field.Spec{
			Length:      3,
			Description: "Currency Code",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
		62: field.NewString(&field.Spec{
			Length:      40,
			Description: "Cardholder Name",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.LL,
		}),
	},
}

// approvedResponseCode is the DE39 value for an approved and authorized
// transaction; any other value is the processor's failure code.
const approvedResponseCode = "000"

type authorizationRequest struct {
	MTI            *field.String `index:"0"`
	PAN            *field.String `index:"2"`
	Amount         *field.String `index:"4"`
	Expiration     *field.String `index:"14"`
	MerchantID     *field.String `index:"42"`
	MerchantName   *field.String `index:"43"`
	CVV            *field.String `index:"48"`
	Currency       *field.String `index:"49"`
	CardholderName *field.String `index:"62"`
}

type authorizationResponse struct {
	MTI            *field.String `index:"0"`
	ApprovalCode   *field.String `index:"38"`
	ResponseCode   *field.String `index:"39"`
	FailureMessage *field.String `index:"44"`
}

func stringValue(f *field.String) string {
	if f == nil {
		return ""
	}
	return f.Value()
}

func readMessageLength(r io.Reader) (int, error) {
	header := network.NewBinary2BytesHeader()
	if _, err := header.ReadFrom(r); err != nil {
		return 0, fmt.Errorf("reading message length header: %w", err)
	}
	return header.Length(), nil
}

func writeMessageLength(w io.Writer, length int) (int, error) {
	header := network.NewBinary2BytesHeader()
	header.SetLength(length)
	n, err := header.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("writing message length header: %w", err)
	}
	return n, nil
}
