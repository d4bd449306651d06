// Package expiry implements the expiration-date rule shared by card
// validation, enrollment bootstrap and the ISO 8583 adapter, plus the YYMM
// wire format helpers.
package expiry

import (
	"fmt"
	"strconv"
	"time"
)

// DefaultMaxFutureYears bounds how far ahead a card expiry may lie.
const DefaultMaxFutureYears = 5

// lastPlausibleDay is the highest day number present in every month; the
// expiry comparison resolves to it so a card stays usable through most of its
// printed month regardless of the month's length.
const lastPlausibleDay = 28

// Valid reports whether a month/year expiration is acceptable at the given
// instant: day 28 of the expiry month must lie strictly after now, and the
// expiry year must be strictly less than maxFutureYears ahead of now's year.
// A year exactly maxFutureYears ahead is rejected.
func Valid(month, year int, now time.Time, maxFutureYears int) bool {
	if month < 1 || month > 12 {
		return false
	}

	expires := time.Date(year, time.Month(month), lastPlausibleDay, 0, 0, 0, 0, now.Location())

	return expires.After(now) && year-now.Year() < maxFutureYears
}

// YYMM formats a month/year expiry as the four-digit YYMM used on the wire.
func YYMM(month, year int) string {
	return fmt.Sprintf("%02d%02d", year%100, month)
}

// ParseYYMM expands a YYMM string into a month and a four-digit year in the
// 2000s.
func ParseYYMM(yymm string) (month, year int, err error) {
	if len(yymm) != 4 {
		return 0, 0, fmt.Errorf("expiry must be YYMM (4 digits)")
	}
	for i := 0; i < 4; i++ {
		if yymm[i] < '0' || yymm[i] > '9' {
			return 0, 0, fmt.Errorf("expiry must be digits: YYMM")
		}
	}

	yy, _ := strconv.Atoi(yymm[:2])
	mm, _ := strconv.Atoi(yymm[2:])
	if mm < 1 || mm > 12 {
		return 0, 0, fmt.Errorf("expiry month must be 01..12")
	}

	return mm, 2000 + yy, nil
}
