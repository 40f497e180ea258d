package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/spiffcs/vigil/internal/model"
	"github.com/spiffcs/vigil/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	notifs := store.NewStoreAt(filepath.Join(t.TempDir(), "notifications.json"))

	item := model.Item{
		Type:   model.ItemTypeIssue,
		NodeID: "I_1",
		Number: 10,
		Title:  "first issue",
		URL:    "https://github.com/acme/widgets/issues/10",
		Repo:   model.RepoRef{Owner: "acme", Name: "widgets"},
	}
	pr := model.Item{
		Type:   model.ItemTypePullRequest,
		NodeID: "PR_1",
		Number: 11,
		Title:  "first pull",
		URL:    "https://github.com/acme/widgets/pull/11",
		Repo:   model.RepoRef{Owner: "acme", Name: "widgets"},
	}

	now := time.Now().UTC()
	if _, err := notifs.Merge([]model.StoredNotification{
		model.NewNotification(model.KindNew, item, now),
		model.NewNotification(model.KindMention, pr, now),
	}); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	return New(notifs), notifs
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestHandleList(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/notifications")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var list []model.StoredNotification
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	if list[0].ID != "new:I_1" || list[1].ID != "mention:PR_1" {
		t.Errorf("unexpected ids: %s, %s", list[0].ID, list[1].ID)
	}
}

func TestHandleMarkRead(t *testing.T) {
	srv, notifs := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/notifications/new:I_1/read")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if notifs.Count() != 1 {
		t.Errorf("expected 1 notification left, got %d", notifs.Count())
	}
	if notifs.Badge() != 1 {
		t.Errorf("expected badge 1, got %d", notifs.Badge())
	}
	if !notifs.IsRead("new:I_1") {
		t.Error("expected the id to be marked read")
	}
}

func TestHandleMarkReadUnknownID(t *testing.T) {
	srv, notifs := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/notifications/new:I_999/read")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if notifs.Badge() != 2 {
		t.Errorf("expected badge unchanged at 2, got %d", notifs.Badge())
	}
}

func TestHandleMarkReadTwice(t *testing.T) {
	srv, notifs := newTestServer(t)

	for i := 0; i < 2; i++ {
		rec := doRequest(t, srv, http.MethodPost, "/api/notifications/new:I_1/read")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	if notifs.Badge() != 1 {
		t.Errorf("expected badge 1 after repeated reads, got %d", notifs.Badge())
	}
}

func TestHandleReadAll(t *testing.T) {
	srv, notifs := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/read-all")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if cleared, _ := body["cleared"].(float64); int(cleared) != 2 {
		t.Errorf("expected 2 cleared, got %v", body["cleared"])
	}
	if notifs.Count() != 0 || notifs.Badge() != 0 {
		t.Errorf("expected empty store, got count=%d badge=%d", notifs.Count(), notifs.Badge())
	}
}

func TestHandleBadge(t *testing.T) {
	srv, notifs := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/badge")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "2" {
		t.Errorf("expected badge body %q, got %q", "2", string(body))
	}

	if _, err := notifs.MarkAllRead(); err != nil {
		t.Fatalf("failed to mark all read: %v", err)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/badge")
	body, _ = io.ReadAll(rec.Body)
	if string(body) != "" {
		t.Errorf("expected empty badge body at zero, got %q", string(body))
	}
}
