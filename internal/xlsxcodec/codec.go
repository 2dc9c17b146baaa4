package xlsxcodec

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/resale-ledger/internal/domain"
)

// ErrCorruptWorkbook is returned when the bytes cannot be decoded into
// the expected sheet and columns.
var ErrCorruptWorkbook = errors.New("corrupt workbook")

// SheetName is the single sheet holding the ledger table.
const SheetName = "Transactions"

// Columns is the fixed header row of the ledger workbook. Unsold rows
// leave the two sell cells empty.
var Columns = []string{
	"Index",
	"Serial Number",
	"Model",
	"Storage",
	"Purchase Price",
	"Sell Price",
	"Purchase Date",
	"Sell Date",
}

// Codec round-trips a domain.Table through .xlsx workbook bytes.
type Codec struct{}

// New creates a workbook codec.
func New() *Codec {
	return &Codec{}
}

// Encode writes the full table into a fresh workbook and returns its
// bytes. Row order is preserved.
func (c *Codec) Encode(table domain.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("Encode: rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("Encode: write header: %w", err)
	}

	for i, rec := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("Encode: cell name for row %d: %w", i+2, err)
		}
		row := []interface{}{
			rec.Index,
			rec.SerialNumber,
			rec.Model,
			rec.Storage,
			rec.PurchasePrice,
			rec.SellPrice,
			rec.PurchaseDate,
			rec.SellDate,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("Encode: write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("Encode: serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses workbook bytes back into a table. Any structural
// problem (unreadable file, missing sheet, unexpected header,
// non-integer index) yields ErrCorruptWorkbook.
func (c *Codec) Decode(data []byte) (domain.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrCorruptWorkbook, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrCorruptWorkbook, SheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrCorruptWorkbook)
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	var table domain.Table
	for i, row := range rows[1:] {
		if len(row) > len(Columns) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want at most %d", ErrCorruptWorkbook, i+2, len(row), len(Columns))
		}
		// GetRows drops trailing empty cells, which is where the sell
		// columns of unsold rows live.
		cells := pad(row, len(Columns))

		index, err := strconv.Atoi(strings.TrimSpace(cells[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: index %q", ErrCorruptWorkbook, i+2, cells[0])
		}

		table = append(table, domain.Record{
			Index:         index,
			SerialNumber:  cells[1],
			Model:         cells[2],
			Storage:       cells[3],
			PurchasePrice: cells[4],
			SellPrice:     cells[5],
			PurchaseDate:  cells[6],
			SellDate:      cells[7],
		})
	}
	return table, nil
}

func checkHeader(header []string) error {
	if len(header) > len(Columns) {
		return fmt.Errorf("%w: header has %d columns, want %d", ErrCorruptWorkbook, len(header), len(Columns))
	}
	cells := pad(header, len(Columns))
	for i, want := range Columns {
		if cells[i] != want {
			return fmt.Errorf("%w: header column %d is %q, want %q", ErrCorruptWorkbook, i+1, cells[i], want)
		}
	}
	return nil
}

func pad(cells []string, n int) []string {
	if len(cells) >= n {
		return cells[:n]
	}
	out := make([]string, n)
	copy(out, cells)
	return out
}
