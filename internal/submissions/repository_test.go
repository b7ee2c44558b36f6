package submissions_test

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/image-intake/internal/submissions"
	"github.com/JaimeStill/image-intake/pkg/pagination"
)

func TestCreate_Defaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.create(t, "user@example.com")

	got, err := f.sys.Find(ctx, created.ID)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}

	if got.Email != "user@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
	if got.OriginalImagePath != created.OriginalImagePath || got.OriginalImagePath == "" {
		t.Errorf("OriginalImagePath = %q, want %q", got.OriginalImagePath, created.OriginalImagePath)
	}
	if got.Status != submissions.StatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
	if got.ResultImagePath != nil {
		t.Errorf("ResultImagePath = %q, want nil", *got.ResultImagePath)
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v", got.CreatedAt, got.UpdatedAt)
	}
	if time.Since(got.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt = %v, want recent", got.CreatedAt)
	}
}

func TestCreate_UsesSuppliedID(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	sub, err := f.sys.Create(context.Background(), submissions.CreateCommand{
		ID:                id,
		Email:             "user@example.com",
		OriginalImagePath: "/uploads/a.png",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if sub.ID != id {
		t.Errorf("ID = %s, want %s", sub.ID, id)
	}
}

func TestCreate_UniqueIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seen := make(map[uuid.UUID]bool)
	for range 25 {
		sub, err := f.sys.Create(ctx, submissions.CreateCommand{
			Email:             "user@example.com",
			OriginalImagePath: "/uploads/a.png",
		})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if seen[sub.ID] {
			t.Fatalf("duplicate id %s", sub.ID)
		}
		seen[sub.ID] = true
	}
}

func TestCreate_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.New()

	first := submissions.CreateCommand{ID: id, Email: "first@example.com", OriginalImagePath: "/uploads/first.png"}
	if _, err := f.sys.Create(ctx, first); err != nil {
		t.Fatalf("first Create() failed: %v", err)
	}

	second := submissions.CreateCommand{ID: id, Email: "second@example.com", OriginalImagePath: "/uploads/second.png"}
	_, err := f.sys.Create(ctx, second)
	if !errors.Is(err, submissions.ErrDuplicate) {
		t.Fatalf("second Create() error = %v, want ErrDuplicate", err)
	}

	got, err := f.sys.Find(ctx, id)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if got.Email != "first@example.com" {
		t.Errorf("Email = %q, duplicate create overwrote the record", got.Email)
	}
}

func TestCreate_ConcurrentDuplicate(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dupes     int
		others    []error
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.sys.Create(context.Background(), submissions.CreateCommand{
				ID:                id,
				Email:             "race@example.com",
				OriginalImagePath: "/uploads/race.png",
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, submissions.ErrDuplicate):
				dupes++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if succeeded != 1 || dupes != workers-1 {
		t.Errorf("succeeded = %d, duplicates = %d; want 1 and %d", succeeded, dupes, workers-1)
	}
}

func TestCreate_Invalid(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		cmd  submissions.CreateCommand
		want error
	}{
		{"missing email", submissions.CreateCommand{OriginalImagePath: "/uploads/a.png"}, submissions.ErrInvalidEmail},
		{"missing path", submissions.CreateCommand{Email: "user@example.com"}, submissions.ErrInvalidForm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sys.Create(context.Background(), tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}

	if rows := f.rows(t); len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

func TestFind_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.sys.Find(context.Background(), uuid.New())
	if !errors.Is(err, submissions.ErrNotFound) {
		t.Fatalf("Find() error = %v, want ErrNotFound", err)
	}
	if errors.Is(err, submissions.ErrStorage) {
		t.Error("not-found error also classified as storage error")
	}
}

func TestUpdateStatus_Completed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.create(t, "user@example.com")

	updated, err := f.sys.UpdateStatus(ctx, sub.ID, submissions.UpdateStatusCommand{
		Status:     submissions.StatusCompleted,
		ResultPath: ptr("/results/out.png"),
	})
	if err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}

	if updated.Status != submissions.StatusCompleted {
		t.Errorf("Status = %q, want completed", updated.Status)
	}
	if updated.ResultImagePath == nil || *updated.ResultImagePath != "/results/out.png" {
		t.Errorf("ResultImagePath = %v, want /results/out.png", updated.ResultImagePath)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", updated.UpdatedAt, updated.CreatedAt)
	}
	if !updated.CreatedAt.Equal(sub.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", sub.CreatedAt, updated.CreatedAt)
	}

	got, err := f.sys.Find(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if got.Status != submissions.StatusCompleted || got.ResultImagePath == nil {
		t.Errorf("persisted = %+v, want completed with result", got)
	}
}

func TestUpdateStatus_OmittedResultPathPreserved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.create(t, "user@example.com")

	if _, err := f.sys.UpdateStatus(ctx, sub.ID, submissions.UpdateStatusCommand{
		Status:     submissions.StatusCompleted,
		ResultPath: ptr("/results/out.png"),
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	updated, err := f.sys.UpdateStatus(ctx, sub.ID, submissions.UpdateStatusCommand{
		Status: submissions.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("UpdateStatus() without result path failed: %v", err)
	}
	if updated.ResultImagePath == nil || *updated.ResultImagePath != "/results/out.png" {
		t.Errorf("ResultImagePath = %v, want preserved /results/out.png", updated.ResultImagePath)
	}
}

func TestUpdateStatus_RefreshesUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.create(t, "user@example.com")

	time.Sleep(5 * time.Millisecond)

	updated, err := f.sys.UpdateStatus(ctx, sub.ID, submissions.UpdateStatusCommand{Status: submissions.StatusReceived})
	if err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}
	if !updated.UpdatedAt.After(sub.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, sub.UpdatedAt)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name  string
		setup []submissions.UpdateStatusCommand
		cmd   submissions.UpdateStatusCommand
		want  error
	}{
		{
			name: "pending to received",
			cmd:  submissions.UpdateStatusCommand{Status: submissions.StatusReceived},
		},
		{
			name:  "received to failed",
			setup: []submissions.UpdateStatusCommand{{Status: submissions.StatusReceived}},
			cmd:   submissions.UpdateStatusCommand{Status: submissions.StatusFailed},
		},
		{
			name:  "failed reasserted",
			setup: []submissions.UpdateStatusCommand{{Status: submissions.StatusFailed}},
			cmd:   submissions.UpdateStatusCommand{Status: submissions.StatusFailed},
		},
		{
			name: "unknown status",
			cmd:  submissions.UpdateStatusCommand{Status: "archived"},
			want: submissions.ErrInvalidStatus,
		},
		{
			name: "completed without result path",
			cmd:  submissions.UpdateStatusCommand{Status: submissions.StatusCompleted},
			want: submissions.ErrInvalidTransition,
		},
		{
			name: "completed with empty result path",
			cmd:  submissions.UpdateStatusCommand{Status: submissions.StatusCompleted, ResultPath: ptr("")},
			want: submissions.ErrInvalidTransition,
		},
		{
			name: "result path on non-completed status",
			cmd:  submissions.UpdateStatusCommand{Status: submissions.StatusReceived, ResultPath: ptr("/results/x.png")},
			want: submissions.ErrInvalidTransition,
		},
		{
			name:  "out of failed",
			setup: []submissions.UpdateStatusCommand{{Status: submissions.StatusFailed}},
			cmd:   submissions.UpdateStatusCommand{Status: submissions.StatusPending},
			want:  submissions.ErrInvalidTransition,
		},
		{
			name: "out of completed",
			setup: []submissions.UpdateStatusCommand{
				{Status: submissions.StatusCompleted, ResultPath: ptr("/results/x.png")},
			},
			cmd:  submissions.UpdateStatusCommand{Status: submissions.StatusFailed},
			want: submissions.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			sub := f.create(t, "user@example.com")

			for _, step := range tt.setup {
				if _, err := f.sys.UpdateStatus(ctx, sub.ID, step); err != nil {
					t.Fatalf("setup %s: %v", step.Status, err)
				}
			}
			before, err := f.sys.Find(ctx, sub.ID)
			if err != nil {
				t.Fatalf("Find() failed: %v", err)
			}

			updated, err := f.sys.UpdateStatus(ctx, sub.ID, tt.cmd)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("UpdateStatus() failed: %v", err)
				}
				if updated.Status != tt.cmd.Status {
					t.Errorf("Status = %q, want %q", updated.Status, tt.cmd.Status)
				}
				return
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("UpdateStatus() error = %v, want %v", err, tt.want)
			}
			after, err := f.sys.Find(ctx, sub.ID)
			if err != nil {
				t.Fatalf("Find() failed: %v", err)
			}
			if after.Status != before.Status || !after.UpdatedAt.Equal(before.UpdatedAt) {
				t.Errorf("rejected update changed record: before %+v, after %+v", before, after)
			}
		})
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.sys.UpdateStatus(context.Background(), uuid.New(), submissions.UpdateStatusCommand{
		Status: submissions.StatusReceived,
	})
	if !errors.Is(err, submissions.ErrNotFound) {
		t.Errorf("UpdateStatus() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.create(t, "user@example.com")

	deleted, err := f.sys.Delete(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if !deleted {
		t.Error("Delete() = false, want true")
	}

	if _, err := f.sys.Find(ctx, sub.ID); !errors.Is(err, submissions.ErrNotFound) {
		t.Errorf("Find() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(sub.OriginalImagePath); !os.IsNotExist(err) {
		t.Errorf("stored image still present: %v", err)
	}

	deleted, err = f.sys.Delete(ctx, sub.ID)
	if err != nil {
		t.Fatalf("second Delete() failed: %v", err)
	}
	if deleted {
		t.Error("second Delete() = true, want false")
	}
}

func TestDelete_MissingFileTolerated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.create(t, "user@example.com")

	if err := os.Remove(sub.OriginalImagePath); err != nil {
		t.Fatalf("remove image: %v", err)
	}

	deleted, err := f.sys.Delete(ctx, sub.ID)
	if err != nil || !deleted {
		t.Errorf("Delete() = %v, %v; want true, nil", deleted, err)
	}
}

func TestImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.create(t, "user@example.com")

	rc, contentType, err := f.sys.Image(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Image() failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()

	if contentType != "image/png" {
		t.Errorf("content type = %q, want image/png", contentType)
	}
	if string(data) != "png" {
		t.Errorf("data = %q, want png", data)
	}

	if _, _, err := f.sys.Image(ctx, uuid.New()); !errors.Is(err, submissions.ErrNotFound) {
		t.Errorf("Image() unknown id error = %v, want ErrNotFound", err)
	}

	if err := os.Remove(sub.OriginalImagePath); err != nil {
		t.Fatalf("remove image: %v", err)
	}
	if _, _, err := f.sys.Image(ctx, sub.ID); !errors.Is(err, submissions.ErrNotFound) {
		t.Errorf("Image() missing file error = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	f := newFixture(t)

	var created []*submissions.Submission
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		created = append(created, f.create(t, email))
		time.Sleep(2 * time.Millisecond)
	}

	rows := f.rows(t)
	if len(rows) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(rows))
	}
	for i, row := range rows {
		want := created[len(created)-1-i]
		if row.ID != want.ID {
			t.Errorf("List()[%d] = %s, want %s", i, row.Email, want.Email)
		}
	}
}

func TestList_TiesOrderedByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range 5 {
		f.create(t, uuid.NewString()+"@example.com")
	}

	rows, err := f.sys.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if cur.CreatedAt.After(prev.CreatedAt) {
			t.Fatalf("row %d newer than row %d", i, i-1)
		}
		if cur.CreatedAt.Equal(prev.CreatedAt) && cur.ID.String() > prev.ID.String() {
			t.Fatalf("tie at row %d not ordered by id descending", i)
		}
	}
}

func TestList_Empty(t *testing.T) {
	f := newFixture(t)
	if rows := f.rows(t); rows == nil || len(rows) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", rows)
	}
}

func TestPage_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.create(t, "alice@example.com")
	f.create(t, "bob@example.com")
	f.create(t, "carol@other.org")

	if _, err := f.sys.UpdateStatus(ctx, alice.ID, submissions.UpdateStatusCommand{Status: submissions.StatusFailed}); err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}

	failed := submissions.StatusFailed
	tests := []struct {
		name    string
		page    pagination.PageRequest
		filters submissions.Filters
		total   int
	}{
		{"all", pagination.PageRequest{}, submissions.Filters{}, 3},
		{"status", pagination.PageRequest{}, submissions.Filters{Status: &failed}, 1},
		{"email contains", pagination.PageRequest{}, submissions.Filters{Email: ptr("EXAMPLE")}, 2},
		{"search", pagination.PageRequest{Search: ptr("carol")}, submissions.Filters{}, 1},
		{"combined", pagination.PageRequest{}, submissions.Filters{Status: &failed, Email: ptr("bob")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.sys.Page(ctx, tt.page, tt.filters)
			if err != nil {
				t.Fatalf("Page() failed: %v", err)
			}
			if result.Total != tt.total || len(result.Data) != tt.total {
				t.Errorf("Total = %d, len(Data) = %d, want %d", result.Total, len(result.Data), tt.total)
			}
		})
	}
}

func TestPage_Paging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range 5 {
		f.create(t, uuid.NewString()+"@example.com")
	}

	result, err := f.sys.Page(ctx, pagination.PageRequest{Page: 2, PageSize: 2}, submissions.Filters{})
	if err != nil {
		t.Fatalf("Page() failed: %v", err)
	}
	if result.Total != 5 || result.TotalPages != 3 || len(result.Data) != 2 {
		t.Errorf("result = total %d, pages %d, len %d; want 5, 3, 2", result.Total, result.TotalPages, len(result.Data))
	}

	all := f.rows(t)
	if result.Data[0].ID != all[2].ID {
		t.Errorf("page 2 starts with %s, want %s", result.Data[0].ID, all[2].ID)
	}
}
