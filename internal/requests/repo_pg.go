package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PGRepo stores records in Postgres, the development/alternative metadata
// backend.
type PGRepo struct {
	db *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{db: db}
}

func (r *PGRepo) Source() string { return "postgres" }

func (r *PGRepo) Insert(ctx context.Context, rec NewRecord) (string, error) {
	requestID := r.nextRequestID(ctx)
	const stmt = `
INSERT INTO cpl_requests (
	request_id, document_id, document_name, student_name, nuid,
	request_type, target_course, status, credits_awarded, advisor_notes,
	submitted_date, updated_date, updated_by, document_count
) VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', NULL, '', NOW(), NOW(), 'System', 1)`
	if _, err := r.db.ExecContext(ctx, stmt,
		requestID, rec.DocumentID, rec.DocumentName, rec.StudentName,
		rec.NUID, rec.RequestType, rec.TargetCourse); err != nil {
		return "", fmt.Errorf("insert request: %w", err)
	}
	return requestID, nil
}

func (r *PGRepo) nextRequestID(ctx context.Context) string {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cpl_requests`).Scan(&count)
	if err != nil {
		return "REQ" + time.Now().UTC().Format("20060102150405")
	}
	return fmt.Sprintf("REQ%06d", count+1)
}

const pgSelectColumns = `
	request_id, document_id, document_name, student_name, nuid,
	request_type, target_course, status, credits_awarded, advisor_notes,
	submitted_date, updated_date, updated_by, document_count`

func (r *PGRepo) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT`+pgSelectColumns+`
FROM cpl_requests ORDER BY submitted_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanPGRow(rows)
		if err != nil {
			return nil, fmt.Errorf("list requests: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return records, nil
}

func (r *PGRepo) FindLatestByNUID(ctx context.Context, nuid string) (Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT`+pgSelectColumns+`
FROM cpl_requests WHERE nuid = $1 ORDER BY submitted_date DESC LIMIT 1`, nuid)
	if err != nil {
		return Record{}, fmt.Errorf("lookup by nuid: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Record{}, fmt.Errorf("lookup by nuid: %w", err)
		}
		return Record{}, ErrNotFound
	}
	rec, err := scanPGRow(rows)
	if err != nil {
		return Record{}, fmt.Errorf("lookup by nuid: %w", err)
	}
	return rec, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, upd StatusUpdate) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE cpl_requests SET status = $1, credits_awarded = $2, advisor_notes = $3,
	updated_date = NOW(), updated_by = $4
WHERE request_id = $5`,
		upd.Status, upd.Credits, upd.Notes, upd.UpdatedBy, upd.RequestID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPGRow(row rowScanner) (Record, error) {
	var rec Record
	var credits sql.NullInt64
	var notes, updatedBy sql.NullString
	err := row.Scan(
		&rec.RequestID, &rec.DocumentID, &rec.DocumentName, &rec.StudentName,
		&rec.NUID, &rec.RequestType, &rec.TargetCourse, &rec.Status,
		&credits, &notes, &rec.SubmittedDate, &rec.UpdatedDate,
		&updatedBy, &rec.DocumentCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if credits.Valid {
		v := int(credits.Int64)
		rec.CreditsAwarded = &v
	}
	rec.AdvisorNotes = notes.String
	rec.UpdatedBy = updatedBy.String
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
