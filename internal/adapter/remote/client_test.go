package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"weighttrack/internal/adapter/remote"
	"weighttrack/internal/domain"
)

func newClient(t *testing.T, h http.HandlerFunc, opts ...remote.Option) *remote.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := remote.New(ts.URL+"/api/weights", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := remote.New("/api/weights"); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestList(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/weights/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"_id":"a1","weight":72.5,"date":"2024-01-01T00:00:00.000Z","__v":0},{"_id":"b2","weight":71,"date":"2024-01-08"}]`)
	})

	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []domain.WeightEntry{
		{ID: "a1", Weight: 72.5, Date: "2024-01-01T00:00:00.000Z"},
		{ID: "b2", Weight: 71, Date: "2024-01-08"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestList_EmptyBodyIsEmptyCollection(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})
	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCreateSendsNumberAndISODate(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/weights/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["weight"] != 72.5 {
			t.Errorf("weight = %#v, want number 72.5", body["weight"])
		}
		if body["date"] != "2024-01-01" {
			t.Errorf("date = %#v", body["date"])
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"_id":"new","weight":72.5,"date":"2024-01-01"}`)
	})

	got, err := c.Create(context.Background(), domain.WeightInput{Weight: 72.5, Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "new" {
		t.Errorf("ID = %q", got.ID)
	}
}

func TestUpdateAndDeleteScopeToEscapedID(t *testing.T) {
	var calls []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.EscapedPath())
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"_id":"a/1","weight":70,"date":"2024-02-01"}`)
	})

	ctx := context.Background()
	if _, err := c.Update(ctx, "a/1", domain.WeightInput{Weight: 70, Date: "2024-02-01"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := c.Delete(ctx, "a/1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := []string{"PATCH /api/weights/a%2F1", "DELETE /api/weights/a%2F1"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestServerError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json error field", http.StatusBadRequest, `{"error":"date must be YYYY-MM-DD"}`, "date must be YYYY-MM-DD"},
		{"json message field", http.StatusInternalServerError, `{"message":"db down"}`, "db down"},
		{"plain body", http.StatusBadGateway, "upstream unavailable\n", "upstream unavailable"},
		{"not found", http.StatusNotFound, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			err := c.Delete(context.Background(), "x")
			var serr *domain.ServerError
			if !errors.As(err, &serr) {
				t.Fatalf("expected ServerError, got %T %v", err, err)
			}
			if serr.StatusCode != tc.status {
				t.Errorf("StatusCode = %d", serr.StatusCode)
			}
			if serr.Message != tc.wantMsg {
				t.Errorf("Message = %q, want %q", serr.Message, tc.wantMsg)
			}
			if serr.Op != "delete" {
				t.Errorf("Op = %q", serr.Op)
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := remote.New(url + "/api/weights")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.List(context.Background())
	var nerr *domain.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
	if nerr.Op != "list" {
		t.Errorf("Op = %q", nerr.Op)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, remote.WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.List(context.Background())
	var nerr *domain.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
	if !nerr.Timeout() {
		t.Errorf("expected a timeout, got %v", nerr.Err)
	}
}

func TestStaticTokenAuth(t *testing.T) {
	ctx := context.Background()
	hc, err := remote.HTTPClient(ctx, remote.Auth{Token: "s3cret"})
	if err != nil {
		t.Fatalf("HTTPClient: %v", err)
	}
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer s3cret" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = io.WriteString(w, `[]`)
	}, remote.WithHTTPClient(hc))

	if _, err := c.List(ctx); err != nil {
		t.Fatalf("List: %v", err)
	}
}

func TestClientCredentialsAuthViaDiscovery(t *testing.T) {
	var tokenCalls atomic.Int32
	var issuer string
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/.well-known/openid-configuration":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"issuer":                 issuer,
				"authorization_endpoint": issuer + "/authorize",
				"token_endpoint":         issuer + "/token",
				"jwks_uri":               issuer + "/keys",
			})
		case "/token":
			tokenCalls.Add(1)
			_ = r.ParseForm()
			if gt := r.PostForm.Get("grant_type"); gt != "client_credentials" {
				t.Errorf("grant_type = %q", gt)
			}
			_, _ = io.WriteString(w, `{"access_token":"cc-token","token_type":"bearer","expires_in":3600}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer idp.Close()
	issuer = idp.URL

	ctx := context.Background()
	hc, err := remote.HTTPClient(ctx, remote.Auth{
		Issuer:       issuer,
		ClientID:     "weighttrack",
		ClientSecret: "secret",
		Scopes:       []string{"weights"},
	})
	if err != nil {
		t.Fatalf("HTTPClient: %v", err)
	}

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); !strings.EqualFold(got, "Bearer cc-token") {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = io.WriteString(w, `[]`)
	}, remote.WithHTTPClient(hc))

	for range 2 {
		if _, err := c.List(ctx); err != nil {
			t.Fatalf("List: %v", err)
		}
	}
	if n := tokenCalls.Load(); n != 1 {
		t.Errorf("expected the token to be fetched once and reused, got %d fetches", n)
	}
}

func TestHTTPClient_BadIssuer(t *testing.T) {
	idp := httptest.NewServer(http.NotFoundHandler())
	defer idp.Close()

	if _, err := remote.HTTPClient(context.Background(), remote.Auth{Issuer: idp.URL}); err == nil {
		t.Fatal("expected discovery error")
	}
}
