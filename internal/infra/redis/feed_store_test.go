package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestFeedStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewFeedStore(newClient(mr), time.Minute)

	_ = store.GetOrCreate("inc-1")
	if !mr.Exists("incident:feed:inc-1") {
		t.Fatalf("expected redis key to be set")
	}
	watched, err := store.Watched(context.Background(), "inc-1")
	if err != nil || !watched {
		t.Fatalf("expected incident watched, got %v (err %v)", watched, err)
	}

	store.DeleteIfEmpty("inc-1")
	if mr.Exists("incident:feed:inc-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("inc-1"); ok {
		t.Fatalf("expected feed dropped")
	}
}
