package requests

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is the in-process backend for local development and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	records []Record
	now     func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{now: time.Now}
}

func (r *MemoryRepo) Source() string { return "memory" }

func (r *MemoryRepo) Insert(ctx context.Context, rec NewRecord) (string, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	requestID := fmt.Sprintf("REQ%06d", len(r.records)+1)
	now := r.now()
	r.records = append(r.records, Record{
		RequestID:     requestID,
		DocumentID:    rec.DocumentID,
		DocumentName:  rec.DocumentName,
		StudentName:   rec.StudentName,
		NUID:          rec.NUID,
		RequestType:   rec.RequestType,
		TargetCourse:  rec.TargetCourse,
		Status:        "pending",
		AdvisorNotes:  "",
		SubmittedDate: now,
		UpdatedDate:   now,
		UpdatedBy:     "System",
		DocumentCount: 1,
	})
	return requestID, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Record(nil), r.records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedDate.After(out[j].SubmittedDate)
	})
	return out, nil
}

func (r *MemoryRepo) FindLatestByNUID(ctx context.Context, nuid string) (Record, error) {
	records, _ := r.List(ctx)
	for _, rec := range records {
		if rec.NUID == nuid {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, upd StatusUpdate) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].RequestID == upd.RequestID {
			r.records[i].Status = upd.Status
			r.records[i].CreditsAwarded = upd.Credits
			r.records[i].AdvisorNotes = upd.Notes
			r.records[i].UpdatedDate = r.now()
			r.records[i].UpdatedBy = upd.UpdatedBy
			return nil
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
