package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FlexInt is an integer that unmarshals from both JSON numbers and digit
// strings. Payloads produced by external harnesses quote numeric fields like
// exp_month and card_limit, so the decoder accepts either form.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing %s as integer: %w", string(data), err)
	}
	*f = FlexInt(n)
	return nil
}
