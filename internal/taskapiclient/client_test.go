package taskapiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestCreateChildTaskSuccess(t *testing.T) {
	wantOwner := uuid.New()
	taskID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tasks" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-User-ID"); got != wantOwner.String() {
			t.Errorf("X-User-ID = %q, want %q", got, wantOwner.String())
		}
		var req CreateChildRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Title != "pay rent" {
			t.Errorf("Title = %q, want %q", req.Title, "pay rent")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CreatedTask{ID: taskID})
	}))
	defer server.Close()

	client := New(server.URL)
	created, err := client.CreateChildTask(context.Background(), wantOwner, CreateChildRequest{Title: "pay rent"})
	if err != nil {
		t.Fatalf("CreateChildTask: %v", err)
	}
	if created.ID != taskID {
		t.Errorf("created.ID = %v, want %v", created.ID, taskID)
	}
}

func TestCreateChildTaskPermanentFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.CreateChildTask(context.Background(), uuid.New(), CreateChildRequest{Title: "x"})
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("err = %v, want wrapping ErrPermanent", err)
	}
}

func TestCreateChildTaskTransientFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.CreateChildTask(context.Background(), uuid.New(), CreateChildRequest{Title: "x"})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("err = %v, want wrapping ErrTransient", err)
	}
}
