package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestNewClient(t *testing.T) {
	t.Run("removes trailing slashes from base URL", func(t *testing.T) {
		client := NewClient("http://localhost:5000///", "test-token")
		if client.BaseURL != "http://localhost:5000" {
			t.Errorf("expected BaseURL 'http://localhost:5000', got %s", client.BaseURL)
		}
		if client.Token != "test-token" {
			t.Errorf("expected Token 'test-token', got %s", client.Token)
		}
	})

	t.Run("sets default HTTP client timeout", func(t *testing.T) {
		client := NewClient("http://localhost:5000", "")
		if client.HTTPClient == nil || client.HTTPClient.Timeout == 0 {
			t.Error("expected HTTPClient with a timeout")
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{Status: 404, Message: "File not found"}
	if err.Error() != "api: 404: File not found" {
		t.Errorf("unexpected error message %q", err.Error())
	}
}

func TestClient_Get(t *testing.T) {
	t.Run("sends auth header and query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET request, got %s", r.Method)
			}
			if r.URL.Path != "/files" {
				t.Errorf("expected path /files, got %s", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer test-token" {
				t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
			}
			if r.URL.Query().Get("trashed") != "true" {
				t.Errorf("expected trashed=true, got %s", r.URL.Query().Get("trashed"))
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"files":   []map[string]interface{}{{"id": "f1", "filename": "a.txt", "size": 3}},
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-token")
		var resp FilesResponse
		if err := client.Get("/files", map[string][]string{"trashed": {"true"}}, &resp); err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if len(resp.Files) != 1 || resp.Files[0].Filename != "a.txt" || resp.Files[0].Size != 3 {
			t.Errorf("unexpected files %+v", resp.Files)
		}
	})

	t.Run("omits auth header without token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				t.Errorf("expected no Authorization header, got %q", r.Header.Get("Authorization"))
			}
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer server.Close()

		if err := NewClient(server.URL, "").Get("/files/public/tok", nil, nil); err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
	})
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string envelope", http.StatusNotFound, `{"success":false,"error":"File not found"}`, "File not found"},
		{"upstream object", http.StatusUnprocessableEntity, `{"success":false,"error":{"code":422,"msg":"Password should be at least 6 characters"}}`, "Password should be at least 6 characters"},
		{"oauth style object", http.StatusBadRequest, `{"success":false,"error":{"error":"invalid_grant","error_description":"Invalid login credentials"}}`, "Invalid login credentials"},
		{"plain text", http.StatusBadGateway, "bad gateway\n", "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL, "").Get("/x", nil, nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Message != tt.want {
				t.Errorf("expected message %q, got %q", tt.want, apiErr.Message)
			}
		})
	}
}

func TestClient_Post(t *testing.T) {
	t.Run("sends JSON body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST request, got %s", r.Method)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON content type, got %q", r.Header.Get("Content-Type"))
			}
			var creds Credentials
			_ = json.NewDecoder(r.Body).Decode(&creds)
			if creds.Email != "a@x.com" || creds.Password != "secret1" {
				t.Errorf("unexpected credentials %+v", creds)
			}
			_, _ = w.Write([]byte(`{"success":true,"access_token":"jwt","user":{"id":"u1","email":"a@x.com"}}`))
		}))
		defer server.Close()

		var resp AuthResponse
		if err := NewClient(server.URL, "").Post("/auth/login", Credentials{Email: "a@x.com", Password: "secret1"}, &resp); err != nil {
			t.Fatalf("Post() returned error: %v", err)
		}
		if resp.AccessToken != "jwt" {
			t.Errorf("expected access token, got %q", resp.AccessToken)
		}
		if string(resp.User) != `{"id":"u1","email":"a@x.com"}` {
			t.Errorf("expected raw user preserved, got %s", resp.User)
		}
	})

	t.Run("nil body sends nothing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			if len(data) != 0 {
				t.Errorf("expected empty body, got %q", data)
			}
			if r.Header.Get("Content-Type") != "" {
				t.Errorf("expected no content type, got %q", r.Header.Get("Content-Type"))
			}
			_, _ = w.Write([]byte(`{"success":true,"purged":2,"failed":[]}`))
		}))
		defer server.Close()

		var resp PurgeResponse
		if err := NewClient(server.URL, "tok").Post("/files/trash/purge_older_than_30d", nil, &resp); err != nil {
			t.Fatalf("Post() returned error: %v", err)
		}
		if resp.Purged != 2 || len(resp.Failed) != 0 {
			t.Errorf("unexpected purge result %+v", resp)
		}
	})
}

func TestClient_Delete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE request, got %s", r.Method)
		}
		if r.URL.Path != "/files/trash/f1/purge" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"File permanently deleted"}`))
	}))
	defer server.Close()

	var resp MessageResponse
	if err := NewClient(server.URL, "tok").Delete("/files/trash/f1/purge", &resp); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if resp.Message != "File permanently deleted" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestClient_Upload(t *testing.T) {
	t.Run("uploads file with multipart form", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			file, header, err := r.FormFile("file")
			if err != nil {
				t.Fatalf("expected multipart file: %v", err)
			}
			defer file.Close()
			data, _ := io.ReadAll(file)
			if header.Filename != "notes.txt" || string(data) != "hello" {
				t.Errorf("unexpected upload %s=%q", header.Filename, data)
			}
			if got := header.Header.Get("Content-Type"); got != "text/plain; charset=utf-8" {
				t.Errorf("expected part type from extension, got %q", got)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"message":"File uploaded successfully","file":{"id":"f1","filename":"notes.txt","size":5}}`))
		}))
		defer server.Close()

		path := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(path, []byte("hello"), 0600); err != nil {
			t.Fatalf("failed writing temp file: %v", err)
		}

		var resp UploadResponse
		if err := NewClient(server.URL, "tok").Upload("/files/upload", "file", path, &resp); err != nil {
			t.Fatalf("Upload() returned error: %v", err)
		}
		if resp.File.ID != "f1" || resp.File.Size != 5 {
			t.Errorf("unexpected file %+v", resp.File)
		}
	})

	t.Run("unknown extension falls back to octet-stream", func(t *testing.T) {
		var gotType, gotName string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, header, err := r.FormFile("file")
			if err == nil {
				gotType = header.Header.Get("Content-Type")
				gotName = header.Filename
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"file":{"id":"f2"}}`))
		}))
		defer server.Close()

		path := filepath.Join(t.TempDir(), `dump "v2".zzqx`)
		if err := os.WriteFile(path, []byte{0, 1, 2}, 0600); err != nil {
			t.Fatalf("failed writing temp file: %v", err)
		}

		if err := NewClient(server.URL, "tok").Upload("/files/upload", "file", path, nil); err != nil {
			t.Fatalf("Upload() returned error: %v", err)
		}
		if gotType != "application/octet-stream" {
			t.Errorf("expected application/octet-stream, got %q", gotType)
		}
		if gotName != `dump "v2".zzqx` {
			t.Errorf("expected quoted filename to survive, got %q", gotName)
		}
	})

	t.Run("bad base URL fails before streaming", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(path, []byte("hello"), 0600); err != nil {
			t.Fatalf("failed writing temp file: %v", err)
		}

		client := NewClient("://no-scheme", "tok")
		if err := client.Upload("/files/upload", "file", path, nil); err == nil {
			t.Fatal("expected request construction error")
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		client := NewClient("http://localhost:1", "tok")
		if err := client.Upload("/files/upload", "file", "/does/not/exist", nil); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
