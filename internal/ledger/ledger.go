package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/resale-ledger/internal/domain"
	"github.com/dvloznov/resale-ledger/internal/storage"
)

// Sentinel errors, matched with errors.Is by the conversation layer.
var (
	// ErrStoreUnavailable is returned when the remote fetch or store fails.
	ErrStoreUnavailable = errors.New("ledger store unavailable")

	// ErrCorruptFile is returned when the fetched bytes cannot be decoded
	// into the expected columns.
	ErrCorruptFile = errors.New("corrupt ledger file")

	// ErrIndexNotFound is returned when a sell update targets an index
	// that is not present in the table.
	ErrIndexNotFound = errors.New("index not found")
)

// Codec round-trips a table through workbook bytes.
type Codec interface {
	Encode(table domain.Table) ([]byte, error)
	Decode(data []byte) (domain.Table, error)
}

// Ledger reads and writes the full transaction table against the remote
// object store. Every mutation is a whole-cycle load, transform, save;
// there is no incremental update and no concurrency token, so two racing
// writers are last-writer-wins. Callers that patch existing rows must
// reload immediately before saving rather than reuse an earlier snapshot.
type Ledger struct {
	store storage.ObjectStore
	codec Codec
	log   zerolog.Logger
}

// New creates a ledger over the given store and codec.
func New(store storage.ObjectStore, codec Codec, log zerolog.Logger) *Ledger {
	return &Ledger{
		store: store,
		codec: codec,
		log:   log,
	}
}

// Load fetches and decodes the full table. A missing remote object
// yields an empty table, so the first ever entry creates the file.
func (l *Ledger) Load(ctx context.Context) (domain.Table, error) {
	data, err := l.store.Fetch(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			l.log.Debug().Msg("ledger object missing, starting with empty table")
			return domain.Table{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	table, err := l.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	l.log.Debug().Int("rows", len(table)).Msg("ledger loaded")
	return table, nil
}

// Save encodes the full table and overwrites the remote object.
func (l *Ledger) Save(ctx context.Context, table domain.Table) error {
	data, err := l.codec.Encode(table)
	if err != nil {
		return fmt.Errorf("Save: encode table: %w", err)
	}

	if err := l.store.Store(ctx, data); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	l.log.Debug().Int("rows", len(table)).Msg("ledger saved")
	return nil
}

// Append returns a new table with entry appended and its Index set to
// the next sequence position. Pure; the input table is not modified.
func Append(table domain.Table, entry domain.Record) domain.Table {
	entry.Index = len(table) + 1

	out := make(domain.Table, 0, len(table)+1)
	out = append(out, table...)
	out = append(out, entry)
	return out
}

// UpdateAt returns a new table with the sell fields of the row holding
// the given index filled from patch. Pure; the input table is not
// modified.
func UpdateAt(table domain.Table, index int, patch domain.SellPatch) (domain.Table, error) {
	out := make(domain.Table, len(table))
	copy(out, table)

	for i, rec := range out {
		if rec.Index == index {
			out[i] = patch.Apply(rec)
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrIndexNotFound, index)
}
