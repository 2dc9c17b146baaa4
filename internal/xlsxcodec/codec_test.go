package xlsxcodec

import (
	"errors"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/resale-ledger/internal/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := New()

	table := domain.Table{
		{
			Index:         1,
			SerialNumber:  "ABC123",
			Model:         "iPhone13",
			Storage:       "128GB",
			PurchasePrice: "500",
			PurchaseDate:  "2026-08-01",
		},
		{
			Index:         2,
			SerialNumber:  "DEF456",
			Model:         "iPhone14",
			Storage:       "256GB",
			PurchasePrice: "700",
			PurchaseDate:  "2026-08-02",
			SellPrice:     "650",
			SellDate:      "2026-08-20",
		},
	}

	data, err := codec.Encode(table)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !reflect.DeepEqual(got, table) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, table)
	}
}

func TestEncodeDecodeEmptyTable(t *testing.T) {
	codec := New()

	data, err := codec.Encode(nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Decode() returned %d rows, want 0", len(got))
	}
}

func TestDecodeNotAWorkbook(t *testing.T) {
	codec := New()

	_, err := codec.Decode([]byte("not a zip archive"))
	if !errors.Is(err, ErrCorruptWorkbook) {
		t.Errorf("Decode() error = %v, want ErrCorruptWorkbook", err)
	}
}

func TestDecodeMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	_, err = New().Decode(buf.Bytes())
	if !errors.Is(err, ErrCorruptWorkbook) {
		t.Errorf("Decode() error = %v, want ErrCorruptWorkbook", err)
	}
}

func TestDecodeWrongHeader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		t.Fatalf("SetSheetName() error = %v", err)
	}
	header := []interface{}{"Index", "Serial", "Model"}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	_, err = New().Decode(buf.Bytes())
	if !errors.Is(err, ErrCorruptWorkbook) {
		t.Errorf("Decode() error = %v, want ErrCorruptWorkbook", err)
	}
}

func TestDecodeOverwideDataRow(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		t.Fatalf("SetSheetName() error = %v", err)
	}
	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}
	row := []interface{}{"1", "ABC", "iPhone", "128GB", "500", "", "2026-08-01", "", "stray ninth cell"}
	if err := f.SetSheetRow(SheetName, "A2", &row); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	_, err = New().Decode(buf.Bytes())
	if !errors.Is(err, ErrCorruptWorkbook) {
		t.Errorf("Decode() error = %v, want ErrCorruptWorkbook", err)
	}
}

func TestDecodeNonIntegerIndex(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		t.Fatalf("SetSheetName() error = %v", err)
	}
	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}
	row := []interface{}{"one", "ABC", "iPhone", "128GB", "500", "", "2026-08-01", ""}
	if err := f.SetSheetRow(SheetName, "A2", &row); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	_, err = New().Decode(buf.Bytes())
	if !errors.Is(err, ErrCorruptWorkbook) {
		t.Errorf("Decode() error = %v, want ErrCorruptWorkbook", err)
	}
}
