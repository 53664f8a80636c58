package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/driveclone/backend/internal/config"
	"github.com/driveclone/backend/internal/database"
	"github.com/driveclone/backend/internal/identity"
	"github.com/driveclone/backend/internal/middleware"
	"github.com/driveclone/backend/internal/models"
	"github.com/driveclone/backend/internal/repository"
	"github.com/driveclone/backend/internal/services"
	"github.com/driveclone/backend/internal/storage"
	"github.com/driveclone/backend/pkg/logger"
	"github.com/driveclone/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	repo     *repository.Repository
	store    *fakeStore
	identity *fakeIdentity
	clock    *testClock
}

// testClock lets tests move the clock used by trash routes.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.now.IsZero() {
		return time.Now()
	}
	return c.now
}

func (c *testClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.SetOutput(io.Discard)
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := database.Connect(config.DBConfig{Driver: config.DBDriverSQLite, URL: ":memory:"})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	fakeID := newFakeIdentity()
	idServer := httptest.NewServer(fakeID)
	t.Cleanup(idServer.Close)

	repo := repository.New(db)
	store := newFakeStore()
	clock := &testClock{}
	trashService := services.NewTrashService(repo, store, services.DefaultTrashTTL)

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	app.Use(recover.New())
	app.Use(middleware.CORS([]string{"https://driveclonekd.netlify.app"}))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	RegisterRoutes(app, Dependencies{
		Repo:     repo,
		Storage:  store,
		Identity: identity.New(config.IdentityConfig{URL: idServer.URL, APIKey: "anon-key", Timeout: 5 * time.Second}),
		Access:   services.NewAccessService(repo, store),
		Trash:    trashService,
		Now:      clock.Now,
	})

	return &testEnv{app: app, db: db, repo: repo, store: store, identity: fakeID, clock: clock}
}

// fakeIdentity mimics the provider's signup and password-grant endpoints.
type fakeIdentity struct {
	mu       sync.Mutex
	accounts map[string]fakeAccount
	calls    int
}

type fakeAccount struct {
	id       string
	password string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]fakeAccount{}}
}

func (f *fakeIdentity) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if r.Header.Get("apikey") != "anon-key" {
		writeFakeJSON(w, http.StatusUnauthorized, `{"message":"Invalid API key"}`)
		return
	}

	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)

	switch {
	case r.URL.Path == "/auth/v1/signup":
		if len(creds.Password) < 6 {
			writeFakeJSON(w, http.StatusUnprocessableEntity, `{"code":422,"msg":"Password should be at least 6 characters"}`)
			return
		}
		if creds.Email == "broken@x.com" {
			writeFakeJSON(w, http.StatusOK, `{"email":"broken@x.com"}`)
			return
		}
		account, ok := f.accounts[creds.Email]
		if !ok {
			account = fakeAccount{id: fmt.Sprintf("uid-%d", len(f.accounts)+1), password: creds.Password}
			f.accounts[creds.Email] = account
		}
		writeFakeJSON(w, http.StatusOK, fmt.Sprintf(`{"id":%q,"email":%q,"role":"authenticated"}`, account.id, creds.Email))
	case r.URL.Path == "/auth/v1/token" && r.URL.Query().Get("grant_type") == "password":
		account, ok := f.accounts[creds.Email]
		if !ok || account.password != creds.Password {
			writeFakeJSON(w, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
			return
		}
		writeFakeJSON(w, http.StatusOK, fmt.Sprintf(`{"access_token":"upstream","user":{"id":%q,"email":%q}}`, account.id, creds.Email))
	default:
		writeFakeJSON(w, http.StatusNotFound, `{"message":"not found"}`)
	}
}

func writeFakeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// fakeStore is an in-memory storage.Store.
type fakeStore struct {
	mu          sync.Mutex
	objects     map[string][]byte
	removeCalls [][]string
	failKeys    map[string]bool
	uploadErr   error
	presignErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, failKeys: map[string]bool{}}
}

func (f *fakeStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Remove(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls = append(f.removeCalls, append([]string(nil), keys...))
	failed := map[string]error{}
	for _, key := range keys {
		if f.failKeys[key] {
			failed[key] = errors.New("permission denied")
			continue
		}
		delete(f.objects, key)
	}
	if len(failed) > 0 {
		return &storage.RemoveError{Failed: failed}
	}
	return nil
}

func (f *fakeStore) PresignedGetURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return fmt.Sprintf("https://blobs.test/%s?expires=%d", key, int(ttl.Seconds())), nil
}

func (f *fakeStore) EnsureBucket(context.Context) error { return nil }

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func createTestUser(t *testing.T, env *testEnv, id, email string) (*models.User, string) {
	t.Helper()

	user, err := env.repo.EnsureUser(context.Background(), id, email)
	if err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func createTestFile(t *testing.T, env *testEnv, ownerID, filename string) *models.File {
	t.Helper()

	key := storage.ObjectKey(filename)
	env.store.objects[key] = []byte("contents")

	file := &models.File{
		UserID:   ownerID,
		Filename: filename,
		Size:     8,
		Type:     "text/plain",
		Path:     key,
	}
	if err := env.repo.CreateFile(context.Background(), file); err != nil {
		t.Fatalf("failed creating test file: %v", err)
	}
	return file
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func performUpload(t *testing.T, app *fiber.App, field, filename, contentType string, content []byte, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		partHeader.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("failed creating multipart part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed writing multipart content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}

	requestHeaders := map[string]string{"Content-Type": writer.FormDataContentType()}
	for key, value := range headers {
		requestHeaders[key] = value
	}

	return performRequest(t, app, http.MethodPost, "/files/upload", &buf, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

func fileIDs(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["files"].([]any)
	if !ok {
		t.Fatalf("expected files array, got %T", body["files"])
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		ids = append(ids, item.(map[string]any)["id"].(string))
	}
	return ids
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
