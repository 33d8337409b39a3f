package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Justinlulululu/PPAP-Master/internal/ppap/testutil"
)

func TestProjectCountByStatusZeroFilled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	testutil.SeedProject(t, db, "proj-001", "P-001", "Alpha", "draft", 0, "u1")
	testutil.SeedProject(t, db, "proj-002", "P-002", "Beta", "draft", 10, "u1")
	testutil.SeedProject(t, db, "proj-003", "P-003", "Gamma", "completed", 100, "u1")

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}

	// 无记录的状态也要出现在结果里
	if len(counts) != 4 {
		t.Fatalf("Expected 4 status buckets, got %d: %v", len(counts), counts)
	}
	if counts["draft"] != 2 || counts["completed"] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
	if counts["in_progress"] != 0 || counts["on_hold"] != 0 {
		t.Errorf("Empty statuses must be zero, got %v", counts)
	}
}

func TestProjectExistsByNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	testutil.SeedProject(t, db, "proj-001", "P-001", "Alpha", "draft", 0, "u1")

	taken, err := repo.ExistsByNumber(ctx, "P-001")
	if err != nil {
		t.Fatalf("ExistsByNumber failed: %v", err)
	}
	if !taken {
		t.Error("Expected P-001 to exist")
	}

	free, err := repo.ExistsByNumber(ctx, "P-002")
	if err != nil {
		t.Fatalf("ExistsByNumber failed: %v", err)
	}
	if free {
		t.Error("Expected P-002 to be free")
	}
}

func TestProjectNotFoundSentinel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on delete, got %v", err)
	}
}
