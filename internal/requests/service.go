package requests

import (
	"context"

	"cpl-backend/internal/shared/telemetry"
)

// Service contains business logic for request records.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// List returns all records, newest first.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.Repo.List(ctx)
}

// UpdateStatus applies an advisor decision to a record.
func (s *Service) UpdateStatus(ctx context.Context, upd StatusUpdate) error {
	if upd.UpdatedBy == "" {
		upd.UpdatedBy = "Advisor"
	}
	if err := s.Repo.UpdateStatus(ctx, upd); err != nil {
		return err
	}
	telemetry.Info("requests.update_status", map[string]any{
		"cpl_request_id": upd.RequestID,
		"status":         upd.Status,
	})
	return nil
}

// LookupStudent returns the latest request summary for a student id.
func (s *Service) LookupStudent(ctx context.Context, nuid string) (StudentSummary, error) {
	rec, err := s.Repo.FindLatestByNUID(ctx, nuid)
	if err != nil {
		return StudentSummary{}, err
	}
	return StudentSummary{
		StudentName:  rec.StudentName,
		RequestType:  rec.RequestType,
		TargetCourse: rec.TargetCourse,
		DocumentID:   rec.DocumentID,
	}, nil
}
