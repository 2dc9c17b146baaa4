package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is returned when an operator-supplied price does not
// parse as a decimal number.
var ErrInvalidPrice = errors.New("invalid price")

// Record represents one transaction row in the ledger workbook: a device
// bought once and later sold at most once. Index is assigned at creation
// and never reused; rows are never deleted.
type Record struct {
	Index         int
	SerialNumber  string
	Model         string
	Storage       string
	PurchasePrice string
	PurchaseDate  string // YYYY-MM-DD
	SellPrice     string // empty until sold
	SellDate      string // empty until sold
}

// Sold reports whether the record has been sold. A record is sold iff
// both sell fields are set; SellPatch is the only mutation path, so a
// half-filled pair cannot occur.
func (r Record) Sold() bool {
	return r.SellPrice != "" && r.SellDate != ""
}

// SellPatch carries the two fields filled in by a sell entry. Both are
// always applied together.
type SellPatch struct {
	SellDate  string
	SellPrice string
}

// Apply returns a copy of rec with the sell fields set.
func (p SellPatch) Apply(rec Record) Record {
	rec.SellDate = p.SellDate
	rec.SellPrice = p.SellPrice
	return rec
}

// Table is the ordered sequence of all records, as persisted in the
// workbook. The zero value is an empty ledger.
type Table []Record

// Unsold returns the subset of records whose sell fields are empty,
// preserving table order.
func (t Table) Unsold() Table {
	var out Table
	for _, rec := range t {
		if !rec.Sold() {
			out = append(out, rec)
		}
	}
	return out
}

// At returns the record with the given index, if present.
func (t Table) At(index int) (Record, bool) {
	for _, rec := range t {
		if rec.Index == index {
			return rec, true
		}
	}
	return Record{}, false
}

// ParsePrice validates an operator-supplied price and returns its
// canonical decimal form ("500", "449.99").
func ParsePrice(raw string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrice, strings.TrimSpace(raw))
	}
	return d.String(), nil
}
