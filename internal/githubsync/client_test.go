package githubsync

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testConfig() *Config {
	return &Config{Token: "ghp_test", Owner: "someone", Repo: "backups", PathPrefix: "/"}
}

func TestClientRead(t *testing.T) {
	content := []byte(`{"groups":[],"dials":[]}`)
	// The contents API wraps base64 payloads at 60 columns.
	encoded := base64.StdEncoding.EncodeToString(content)
	wrapped := encoded[:20] + "\n" + encoded[20:]

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/someone/backups/contents/backup.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ghp_test" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if got := r.Header.Get("X-GitHub-Api-Version"); got == "" {
			t.Error("missing X-GitHub-Api-Version header")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"content": wrapped,
			"sha":     "abc123",
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(), WithBaseURL(srv.URL))
	file, err := c.Read(context.Background(), "backup.json")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(file.Content) != string(content) {
		t.Errorf("Content = %q, want %q", file.Content, content)
	}
	if file.Revision != "abc123" {
		t.Errorf("Revision = %q, want abc123", file.Revision)
	}
}

func TestClientReadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(testConfig(), WithBaseURL(srv.URL))
	_, err := c.Read(context.Background(), "missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Read(missing) error = %v, want ErrNotFound", err)
	}
}

func TestClientWrite(t *testing.T) {
	tests := []struct {
		name     string
		revision string
		status   int
		wantSHA  bool
	}{
		{name: "create without sha", revision: "", status: http.StatusCreated, wantSHA: false},
		{name: "update with sha", revision: "abc123", status: http.StatusOK, wantSHA: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut {
					t.Errorf("method = %q, want PUT", r.Method)
				}
				var body map[string]string
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				sha, ok := body["sha"]
				if ok != tt.wantSHA {
					t.Errorf("sha present = %v, want %v", ok, tt.wantSHA)
				}
				if tt.wantSHA && sha != tt.revision {
					t.Errorf("sha = %q, want %q", sha, tt.revision)
				}
				decoded, err := base64.StdEncoding.DecodeString(body["content"])
				if err != nil {
					t.Fatalf("content is not base64: %v", err)
				}
				if string(decoded) != "payload" {
					t.Errorf("content = %q, want payload", decoded)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(testConfig(), WithBaseURL(srv.URL))
			err := c.Write(context.Background(), "backup.json", "msg", []byte("payload"), tt.revision)
			if err != nil {
				t.Errorf("Write() error = %v", err)
			}
		})
	}
}

func TestClientWriteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"sha mismatch"}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(), WithBaseURL(srv.URL))
	if err := c.Write(context.Background(), "backup.json", "msg", []byte("x"), "stale"); err == nil {
		t.Error("Write() with conflicting sha should fail")
	}
}
