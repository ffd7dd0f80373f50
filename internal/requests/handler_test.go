package requests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(repo Repo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(NewService(repo))
	api := r.Group("/api")
	h.RegisterRoutes(api)
	h.RegisterQueryRoutes(r)
	return r
}

func seedRepo(t *testing.T, repo *MemoryRepo, count int) []string {
	t.Helper()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		repo.now = func() time.Time { return ts }
		id, err := repo.Insert(context.Background(), NewRecord{
			DocumentID:   "doc-" + string(rune('a'+i)),
			DocumentName: "transcript.pdf",
			StudentName:  "Student",
			NUID:         "N0000000" + string(rune('0'+i)),
			RequestType:  "Credit Transfer",
			TargetCourse: "PJM 5900",
		})
		if err != nil {
			t.Fatalf("seed insert: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestListRequests(t *testing.T) {
	repo := NewMemoryRepo()
	seedRepo(t, repo, 3)
	router := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/get-requests", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp listResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Count != 3 || resp.Source != "memory" {
		t.Fatalf("unexpected response %+v", resp)
	}
	// Newest submission first.
	if resp.Requests[0].ID != "REQ000003" {
		t.Fatalf("first id = %s", resp.Requests[0].ID)
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := NewMemoryRepo()
	ids := seedRepo(t, repo, 1)
	router := newTestRouter(repo)

	body := `{"requestId":"` + ids[0] + `","status":"approved","credits":3,"notes":"ok","updatedBy":"Dr. Chen"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/update-status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	rec, err := repo.FindLatestByNUID(context.Background(), "N00000000")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec.Status != "approved" || rec.CreditsAwarded == nil || *rec.CreditsAwarded != 3 {
		t.Fatalf("record not updated: %+v", rec)
	}
	if rec.UpdatedBy != "Dr. Chen" {
		t.Fatalf("updatedBy = %q", rec.UpdatedBy)
	}
}

func TestUpdateStatusUnknownID(t *testing.T) {
	router := newTestRouter(NewMemoryRepo())

	body := `{"requestId":"REQ999999","status":"approved"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/update-status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestQueryStudent(t *testing.T) {
	repo := NewMemoryRepo()
	seedRepo(t, repo, 2)
	router := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/query-student", strings.NewReader(`{"nuid":"N00000001"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var summary StudentSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.DocumentID != "doc-b" || summary.TargetCourse != "PJM 5900" {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestQueryStudentNotFound(t *testing.T) {
	router := newTestRouter(NewMemoryRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/query-student", strings.NewReader(`{"nuid":"N00000000"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestLookupStudentIdempotent(t *testing.T) {
	repo := NewMemoryRepo()
	seedRepo(t, repo, 1)
	svc := NewService(repo)

	first, err := svc.LookupStudent(context.Background(), "N00000000")
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	second, err := svc.LookupStudent(context.Background(), "N00000000")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if first != second {
		t.Fatalf("lookups differ: %+v vs %+v", first, second)
	}
}
