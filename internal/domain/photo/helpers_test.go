package photo

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"geoimages/internal/database"
	"geoimages/internal/storage"
	"geoimages/internal/testutil"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:photo_test_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db = db.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Silent)})

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, &ImageRecord{}))
	return db
}

func setupTestStore(t *testing.T) *storage.FileSystem {
	t.Helper()
	s, err := storage.NewFileSystem(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)
	return s
}

func setupTestService(t *testing.T) (*Service, Repository, *storage.FileSystem) {
	t.Helper()
	repo := NewRepository(setupTestDB(t))
	store := setupTestStore(t)
	return NewService(repo, store, nil, Options{ThumbnailSize: 64}), repo, store
}

// fixtureJPEG is an image taken at dateTime, 53°52'35.240"N 1°54'16.847"W
// unless overridden.
func fixtureJPEG(t *testing.T, dateTime string, latSecMillis uint32) []byte {
	t.Helper()
	return testutil.JPEG(t, 320, 200, testutil.Fixture(
		dateTime,
		"N", [3]uint32{53, 52, latSecMillis},
		"W", [3]uint32{1, 54, 16847},
	))
}

func collect(t *testing.T, seq iter.Seq2[*ImageRecord, error]) []*ImageRecord {
	t.Helper()
	var out []*ImageRecord
	for rec, err := range seq {
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

/* -------- Repository mock -------- */

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, rec *ImageRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRepository) GetBySignature(ctx context.Context, signature string) (*ImageRecord, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ImageRecord), args.Error(1)
}

func (m *MockRepository) DeleteBySignature(ctx context.Context, signature string) error {
	args := m.Called(ctx, signature)
	return args.Error(0)
}

/* unused methods, required by interface */

func (m *MockRepository) RangeQuery(_ context.Context, _ BoundingBox) iter.Seq2[*ImageRecord, error] {
	return func(func(*ImageRecord, error) bool) {}
}

func (m *MockRepository) Count(_ context.Context) (int64, error) {
	return 0, nil
}
