package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/driveclone/backend/internal/config"
	"github.com/driveclone/backend/internal/database"
	"github.com/driveclone/backend/internal/models"
	"github.com/driveclone/backend/internal/repository"
	"github.com/driveclone/backend/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu          sync.Mutex
	objects     map[string][]byte
	removeCalls [][]string
	failKeys    map[string]bool
	removeErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, failKeys: map[string]bool{}}
}

func (f *fakeStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
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
	if f.removeErr != nil {
		return f.removeErr
	}
	failed := map[string]error{}
	for _, key := range keys {
		if f.failKeys[key] {
			failed[key] = errors.New("access denied")
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
	return fmt.Sprintf("https://blobs.test/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

func (f *fakeStore) EnsureBucket(context.Context) error { return nil }

func setupServiceTest(t *testing.T) (*repository.Repository, *fakeStore) {
	t.Helper()
	db, err := database.Connect(config.DBConfig{Driver: config.DBDriverSQLite, URL: ":memory:"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return repository.New(db), newFakeStore()
}

func seedUser(t *testing.T, repo *repository.Repository, id, email string) *models.User {
	t.Helper()
	user, err := repo.EnsureUser(context.Background(), id, email)
	require.NoError(t, err)
	return user
}

func seedFile(t *testing.T, repo *repository.Repository, store *fakeStore, ownerID, name string) *models.File {
	t.Helper()
	file := &models.File{
		UserID:   ownerID,
		Filename: name,
		Size:     3,
		Type:     "text/plain",
		Path:     uuid.NewString() + "_" + name,
	}
	require.NoError(t, repo.CreateFile(context.Background(), file))
	store.objects[file.Path] = []byte("abc")
	return file
}
