package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nrednav/cuid2"

	"go.hackfix.me/dbadmin/db/queries"
	"go.hackfix.me/dbadmin/db/types"
)

// LedgerTable is the name of the table that records the schema version of the
// database.
const LedgerTable = "dbversion"

var ledgerColumns = []string{"id", "seq", "version_number", "version", "version_timestamp"}

// Record is a single entry of the version ledger.
type Record struct {
	ID         string
	Seq        int64
	Ordinal    Ordinal
	Version    string
	RecordedAt time.Time
}

// ReadLedger returns the most recently recorded version of the database. The
// returned bool is false if the ledger table doesn't exist or is empty.
func ReadLedger(ctx context.Context, q types.Querier) (Record, bool, error) {
	if ok, err := checkLedger(ctx, q); err != nil || !ok {
		return Record{}, false, err
	}

	var rec Record
	err := q.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT id, seq, version_number, version, version_timestamp
		FROM %s ORDER BY seq DESC LIMIT 1`, LedgerTable)).
		Scan(&rec.ID, &rec.Seq, &rec.Ordinal, &rec.Version, &rec.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, &LedgerCorruptError{
			Table: LedgerTable,
			Err:   types.ScanError{Subject: "version record", Err: err},
		}
	}

	return rec, true, nil
}

// History returns all ledger records, newest first. It returns an empty slice
// if the ledger table doesn't exist.
func History(ctx context.Context, q types.Querier) ([]Record, error) {
	if ok, err := checkLedger(ctx, q); err != nil || !ok {
		return []Record{}, err
	}

	rows, err := q.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, seq, version_number, version, version_timestamp
		FROM %s ORDER BY seq DESC`, LedgerTable))
	if err != nil {
		return nil, types.LoadError{Subject: "version records", Err: err}
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err = rows.Scan(&rec.ID, &rec.Seq, &rec.Ordinal, &rec.Version, &rec.RecordedAt); err != nil {
			return nil, &LedgerCorruptError{
				Table: LedgerTable,
				Err:   types.ScanError{Subject: "version record", Err: err},
			}
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, types.LoadError{Subject: "version records", Err: err}
	}

	return records, nil
}

// WriteLedger appends a record of ordinal o to the ledger, creating the ledger
// table if it doesn't exist. It must be called with the same Querier used for
// the schema changes the record reflects, so that both are committed or
// rolled back together.
func WriteLedger(ctx context.Context, q types.Querier, reg *Registry, o Ordinal) (Record, error) {
	release, err := reg.Release(o)
	if err != nil {
		return Record{}, err
	}

	_, err = q.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id                VARCHAR(32) NOT NULL PRIMARY KEY,
		seq               INTEGER NOT NULL,
		version_number    INTEGER NOT NULL,
		version           VARCHAR(32) NOT NULL,
		version_timestamp TIMESTAMP NOT NULL
	)`, LedgerTable))
	if err != nil {
		return Record{}, fmt.Errorf("failed creating %s table: %w", LedgerTable, err)
	}

	var lastSeq int64
	err = q.QueryRowContext(ctx, fmt.Sprintf(`SELECT COALESCE(MAX(seq), 0) FROM %s`, LedgerTable)).
		Scan(&lastSeq)
	if err != nil {
		return Record{}, &LedgerCorruptError{Table: LedgerTable, Err: err}
	}

	rec := Record{
		ID:         cuid2.Generate(),
		Seq:        lastSeq + 1,
		Ordinal:    o,
		Version:    release,
		RecordedAt: q.TimeNow().UTC(),
	}
	_, err = q.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, seq, version_number, version, version_timestamp)
		VALUES (?, ?, ?, ?, ?)`, LedgerTable),
		rec.ID, rec.Seq, int(rec.Ordinal), rec.Version, rec.RecordedAt)
	if err != nil {
		return Record{}, fmt.Errorf("failed recording schema version %d: %w",
			o, types.Err("version record", fmt.Sprintf("ID '%s'", rec.ID), err))
	}

	return rec, nil
}

// checkLedger returns true if the ledger table exists and has the expected
// structure.
func checkLedger(ctx context.Context, q types.Querier) (bool, error) {
	exists, err := queries.TableExists(ctx, q, LedgerTable)
	if err != nil {
		return false, &IntrospectionError{Err: err}
	}
	if !exists {
		return false, nil
	}

	cols, err := queries.Columns(ctx, q, LedgerTable)
	if err != nil {
		return false, &IntrospectionError{Err: err}
	}

	var missing []string
	for _, c := range ledgerColumns {
		if !slices.Contains(cols, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return false, &LedgerCorruptError{Table: LedgerTable, Missing: missing}
	}

	return true, nil
}
