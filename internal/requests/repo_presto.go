package requests

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"cpl-backend/internal/shared/storage/presto"
	"cpl-backend/internal/shared/telemetry"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PrestoRepo stores records in an Iceberg table through the Presto
// statement API.
type PrestoRepo struct {
	client *presto.Client
	table  string
}

// NewPrestoRepo validates the table identifiers and builds the repo. The
// identifiers come from configuration, not user input, but they cannot be
// bound as parameters so they are validated here.
func NewPrestoRepo(client *presto.Client, catalog, schema, table string) (*PrestoRepo, error) {
	for _, ident := range []string{catalog, schema, table} {
		if !identPattern.MatchString(ident) {
			return nil, fmt.Errorf("invalid table identifier %q", ident)
		}
	}
	return &PrestoRepo{
		client: client,
		table:  catalog + "." + schema + "." + table,
	}, nil
}

func (r *PrestoRepo) Source() string { return "iceberg" }

const recordColumns = `request_id, document_id, document_name, student_name, nuid,
request_type, target_course, status, credits_awarded, advisor_notes,
submitted_date, updated_date, updated_by, document_count`

func (r *PrestoRepo) Insert(ctx context.Context, rec NewRecord) (string, error) {
	requestID := r.nextRequestID(ctx)
	stmt := `INSERT INTO ` + r.table + ` (` + recordColumns + `) VALUES
(?, ?, ?, ?, ?, ?, ?, 'pending', NULL, '',
CAST(CURRENT_TIMESTAMP AS TIMESTAMP), CAST(CURRENT_TIMESTAMP AS TIMESTAMP), 'System', 1)`
	if err := r.client.Exec(ctx, stmt,
		requestID, rec.DocumentID, rec.DocumentName, rec.StudentName,
		rec.NUID, rec.RequestType, rec.TargetCourse); err != nil {
		return "", fmt.Errorf("insert request: %w", err)
	}
	return requestID, nil
}

// nextRequestID derives "REQ%06d" from the current row count, falling back
// to a timestamp id when the count query fails.
func (r *PrestoRepo) nextRequestID(ctx context.Context) string {
	res, err := r.client.Query(ctx, "SELECT COUNT(*) FROM "+r.table)
	if err != nil || len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		telemetry.Warn("requests.request_id.fallback", map[string]any{
			"err": fmt.Sprint(err),
		})
		return "REQ" + time.Now().UTC().Format("20060102150405")
	}
	count, ok := asInt64(res.Rows[0][0])
	if !ok {
		return "REQ" + time.Now().UTC().Format("20060102150405")
	}
	return fmt.Sprintf("REQ%06d", count+1)
}

func (r *PrestoRepo) List(ctx context.Context) ([]Record, error) {
	stmt := `SELECT ` + recordColumns + ` FROM ` + r.table + ` ORDER BY submitted_date DESC`
	res, err := r.client.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	records := make([]Record, 0, len(res.Rows))
	for _, row := range res.Rows {
		rec, err := scanRow(row)
		if err != nil {
			return nil, fmt.Errorf("list requests: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *PrestoRepo) FindLatestByNUID(ctx context.Context, nuid string) (Record, error) {
	stmt := `SELECT ` + recordColumns + ` FROM ` + r.table +
		` WHERE nuid = ? ORDER BY submitted_date DESC LIMIT 1`
	res, err := r.client.Query(ctx, stmt, nuid)
	if err != nil {
		return Record{}, fmt.Errorf("lookup by nuid: %w", err)
	}
	if len(res.Rows) == 0 {
		return Record{}, ErrNotFound
	}
	rec, err := scanRow(res.Rows[0])
	if err != nil {
		return Record{}, fmt.Errorf("lookup by nuid: %w", err)
	}
	return rec, nil
}

// UpdateStatus applies the mutation. The Presto statement API does not
// report matched row counts for UPDATE, so a miss cannot be detected here
// and is logged instead of returning ErrNotFound.
func (r *PrestoRepo) UpdateStatus(ctx context.Context, upd StatusUpdate) error {
	stmt := `UPDATE ` + r.table + ` SET status = ?, credits_awarded = ?, advisor_notes = ?,
updated_date = CAST(CURRENT_TIMESTAMP AS TIMESTAMP), updated_by = ? WHERE request_id = ?`
	if err := r.client.Exec(ctx, stmt,
		upd.Status, upd.Credits, upd.Notes, upd.UpdatedBy, upd.RequestID); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	telemetry.Info("requests.status.updated", map[string]any{
		"cpl_request_id": upd.RequestID,
		"status":         upd.Status,
		"matched":        "unknown",
	})
	return nil
}

func scanRow(row []any) (Record, error) {
	if len(row) < 14 {
		return Record{}, fmt.Errorf("row has %d columns, want 14", len(row))
	}
	rec := Record{
		RequestID:    asString(row[0]),
		DocumentID:   asString(row[1]),
		DocumentName: asString(row[2]),
		StudentName:  asString(row[3]),
		NUID:         asString(row[4]),
		RequestType:  asString(row[5]),
		TargetCourse: asString(row[6]),
		Status:       asString(row[7]),
		AdvisorNotes: asString(row[9]),
		UpdatedBy:    asString(row[12]),
	}
	if credits, ok := asInt64(row[8]); ok {
		v := int(credits)
		rec.CreditsAwarded = &v
	}
	rec.SubmittedDate = asTime(row[10])
	rec.UpdatedDate = asTime(row[11])
	if count, ok := asInt64(row[13]); ok {
		rec.DocumentCount = int(count)
	}
	return rec, nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// asTime parses the timestamp renderings Presto produces.
func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		"2006-01-02 15:04:05.000",
		"2006-01-02 15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

var _ Repo = (*PrestoRepo)(nil)
