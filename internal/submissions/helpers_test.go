package submissions_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/image-intake/internal/submissions"
	"github.com/JaimeStill/image-intake/migrations"
	"github.com/JaimeStill/image-intake/pkg/database"
	"github.com/JaimeStill/image-intake/pkg/lifecycle"
	"github.com/JaimeStill/image-intake/pkg/pagination"
	"github.com/JaimeStill/image-intake/pkg/storage"
)

const testMaxSize = 1024

var testContentTypes = []string{"image/jpeg", "image/png", "image/gif"}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fixture struct {
	sys        submissions.System
	store      storage.System
	uploader   *submissions.Uploader
	uploadDir  string
	pagination pagination.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	logger := testLogger()
	lc := lifecycle.New()
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })

	dbCfg := &database.Config{Path: filepath.Join(root, "submissions.db")}
	if err := dbCfg.Finalize(nil); err != nil {
		t.Fatalf("database config: %v", err)
	}
	db, err := database.New(dbCfg, logger)
	if err != nil {
		t.Fatalf("database.New() failed: %v", err)
	}
	if err := db.Start(lc); err != nil {
		t.Fatalf("database start: %v", err)
	}
	if err := database.Migrate(db.Connection(), db.Dialect(), migrations.FS, migrations.Dir(db.Dialect())); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	uploadDir := filepath.Join(root, "uploads")
	storeCfg := &storage.Config{BasePath: uploadDir}
	if err := storeCfg.Finalize(nil); err != nil {
		t.Fatalf("storage config: %v", err)
	}
	store, err := storage.New(storeCfg, logger)
	if err != nil {
		t.Fatalf("storage.New() failed: %v", err)
	}
	if err := store.Start(lc); err != nil {
		t.Fatalf("storage start: %v", err)
	}

	var pag pagination.Config
	if err := pag.Finalize(nil); err != nil {
		t.Fatalf("pagination config: %v", err)
	}

	sys := submissions.New(db, store, logger, pag)
	return &fixture{
		sys:        sys,
		store:      store,
		uploader:   submissions.NewUploader(sys, store, logger, testMaxSize, testContentTypes),
		uploadDir:  uploadDir,
		pagination: pag,
	}
}

// create records a submission pointing at a real file in the upload directory.
func (f *fixture) create(t *testing.T, email string) *submissions.Submission {
	t.Helper()
	path := filepath.Join(f.uploadDir, email+".png")
	if err := os.WriteFile(path, []byte("png"), 0644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	sub, err := f.sys.Create(context.Background(), submissions.CreateCommand{
		Email:             email,
		OriginalImagePath: path,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return sub
}

func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (f *fixture) rows(t *testing.T) []submissions.Submission {
	t.Helper()
	subs, err := f.sys.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	return subs
}

func ptr[T any](v T) *T {
	return &v
}
