package store

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func testStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	s, err := NewRedisStore("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestSaveAndGet(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	snap := Snapshot{
		ID:         "s1",
		FEN:        "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		TurnOwner:  "white",
		Status:     "IN_PROGRESS",
		MoveCount:  0,
		Generation: 0,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != snap.ID || got.FEN != snap.FEN || got.TurnOwner != snap.TurnOwner {
		t.Fatalf("snapshot mismatch: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s, _ := testStore(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, Snapshot{ID: "s1", MoveCount: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, Snapshot{ID: "s1", MoveCount: 2, Generation: 2}); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MoveCount != 2 || got.Generation != 2 {
		t.Fatalf("expected latest state, got %+v", got)
	}
}

func TestListAndDelete(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, Snapshot{ID: id}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	snaps, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snaps, err = s.List(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots after delete, got %d", len(snaps))
	}
	for _, snap := range snaps {
		if snap.ID == "b" {
			t.Fatalf("deleted snapshot still listed")
		}
	}
}

func TestListPrunesExpiredDocuments(t *testing.T) {
	s, mr := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, Snapshot{ID: "old"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(25 * time.Hour)

	snaps, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("expected expired snapshot pruned, got %d", len(snaps))
	}
}
