package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}

	ctx := context.Background()
	content := "fake image bytes"
	key := "proj1-budget1-abc123.jpg"

	if err := store.Put(ctx, key, strings.NewReader(content)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	rc, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != content {
		t.Errorf("Get() = %q, want %q", got, content)
	}
}

func TestGetMissingKey(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}

	_, err = store.Get(context.Background(), "nope.png")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestInvalidKeys(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	ctx := context.Background()

	keys := []string{
		"",
		"../etc/passwd",
		"a/b.png",
		`a\b.png`,
		"evil..png",
		strings.Repeat("x", 513),
	}
	for _, key := range keys {
		if err := store.Put(ctx, key, strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidKey", key, err)
		}
		if _, err := store.Get(ctx, key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Get(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestPutOverwrites(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "k.png", strings.NewReader("first")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, "k.png", strings.NewReader("second")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	rc, err := store.Get(ctx, "k.png")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "second" {
		t.Errorf("Get() = %q, want second", got)
	}
}
