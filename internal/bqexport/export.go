package bqexport

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/resale-ledger/internal/domain"
)

const tableName = "ledger_entries"

const dayFormat = "2006-01-02"

// Row is one ledger record in the analytics mirror. Rows from one run
// share an export_id; the latest snapshot is the set of rows with the
// most recent exported_at.
type Row struct {
	ExportID string `bigquery:"export_id"` // REQUIRED
	EntryID  string `bigquery:"entry_id"`  // REQUIRED

	Index        int64  `bigquery:"index"`         // REQUIRED
	SerialNumber string `bigquery:"serial_number"` // REQUIRED
	Model        string `bigquery:"model"`         // NULLABLE
	Storage      string `bigquery:"storage"`       // NULLABLE

	PurchasePrice *big.Rat   `bigquery:"purchase_price"` // REQUIRED NUMERIC
	PurchaseDate  civil.Date `bigquery:"purchase_date"`  // REQUIRED

	SellPrice bigquery.NullString `bigquery:"sell_price"` // NULLABLE
	SellDate  bigquery.NullDate   `bigquery:"sell_date"`  // NULLABLE

	ExportedAt time.Time `bigquery:"exported_at"` // REQUIRED
}

// FromRecord maps a ledger record into a mirror row.
func FromRecord(rec domain.Record, exportID string, exportedAt time.Time) (*Row, error) {
	price, err := decimal.NewFromString(rec.PurchasePrice)
	if err != nil {
		return nil, fmt.Errorf("FromRecord: purchase price %q: %w", rec.PurchasePrice, err)
	}

	purchaseDate, err := time.Parse(dayFormat, rec.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("FromRecord: purchase date %q: %w", rec.PurchaseDate, err)
	}

	row := &Row{
		ExportID:      exportID,
		EntryID:       uuid.NewString(),
		Index:         int64(rec.Index),
		SerialNumber:  rec.SerialNumber,
		Model:         rec.Model,
		Storage:       rec.Storage,
		PurchasePrice: price.Rat(),
		PurchaseDate:  civil.DateOf(purchaseDate),
		ExportedAt:    exportedAt,
	}

	if rec.Sold() {
		sellDate, err := time.Parse(dayFormat, rec.SellDate)
		if err != nil {
			return nil, fmt.Errorf("FromRecord: sell date %q: %w", rec.SellDate, err)
		}
		row.SellPrice = bigquery.NullString{StringVal: rec.SellPrice, Valid: true}
		row.SellDate = bigquery.NullDate{Date: civil.DateOf(sellDate), Valid: true}
	}

	return row, nil
}

// Exporter mirrors ledger snapshots into BigQuery.
type Exporter struct {
	client    *bigquery.Client
	projectID string
	dataset   string
}

// NewExporter creates an exporter using the provided BigQuery client.
func NewExporter(client *bigquery.Client, projectID, dataset string) *Exporter {
	return &Exporter{
		client:    client,
		projectID: projectID,
		dataset:   dataset,
	}
}

// Export inserts the full table as one snapshot and returns its export
// id.
func (e *Exporter) Export(ctx context.Context, table domain.Table) (string, error) {
	exportID := uuid.NewString()
	exportedAt := time.Now().UTC()

	rows := make([]*Row, 0, len(table))
	for _, rec := range table {
		row, err := FromRecord(rec, exportID, exportedAt)
		if err != nil {
			return "", fmt.Errorf("Export: row %d: %w", rec.Index, err)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return exportID, nil
	}

	inserter := e.client.DatasetInProject(e.projectID, e.dataset).Table(tableName).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return "", fmt.Errorf("Export: inserting %d rows: %w", len(rows), err)
	}

	return exportID, nil
}
