package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"advisoret/internal/store"

	"go.uber.org/zap"
)

type failingProposals struct {
	countErr error
}

func (s *failingProposals) Create(ctx context.Context, p *store.VenueProposal) error { return nil }
func (s *failingProposals) GetByID(ctx context.Context, id int64) (*store.VenueProposal, error) {
	return nil, store.ErrNotFound
}
func (s *failingProposals) List(ctx context.Context, f store.SubmissionFilter) ([]store.VenueProposal, error) {
	return nil, nil
}
func (s *failingProposals) MarkApproved(ctx context.Context, id, reviewerID int64, note *string) error {
	return nil
}
func (s *failingProposals) MarkRejected(ctx context.Context, id, reviewerID int64, note *string) error {
	return nil
}
func (s *failingProposals) CountPending(ctx context.Context) (int, error) {
	return 0, s.countErr
}

type stubReports struct {
	pending int
}

func (s *stubReports) Create(ctx context.Context, r *store.VenueReport) error { return nil }
func (s *stubReports) GetByID(ctx context.Context, id int64) (*store.VenueReport, error) {
	return nil, store.ErrNotFound
}
func (s *stubReports) List(ctx context.Context, f store.SubmissionFilter) ([]store.VenueReport, error) {
	return nil, nil
}
func (s *stubReports) Resolve(ctx context.Context, id, reviewerID int64, status store.SubmissionStatus, note *string) error {
	return nil
}
func (s *stubReports) CountPending(ctx context.Context) (int, error) { return s.pending, nil }

func TestPendingCountDegradesToZero(t *testing.T) {
	app := &application{
		logger: zap.NewNop().Sugar(),
		store: store.Storage{
			Proposals: &failingProposals{countErr: errors.New("connection refused")},
			Reports:   &stubReports{pending: 3},
		},
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/pending-count", nil)

	app.pendingCountHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		Data map[string]int `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got := resp.Data["pending_count"]; got != 0 {
		t.Errorf("pending_count = %d, want 0 when counting fails", got)
	}
}

func TestPendingCountSumsSources(t *testing.T) {
	app := &application{
		logger: zap.NewNop().Sugar(),
		store: store.Storage{
			Proposals: &failingProposals{},
			Reports:   &stubReports{pending: 3},
		},
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/pending-count", nil)

	app.pendingCountHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		Data map[string]int `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got := resp.Data["pending_count"]; got != 3 {
		t.Errorf("pending_count = %d, want 3", got)
	}
}
