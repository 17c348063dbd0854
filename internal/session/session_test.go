package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/streamvault/streamvault/internal/models"
	"github.com/streamvault/streamvault/internal/service"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestSaveLoadClear(t *testing.T) {
	store := newTestStore(t)

	// No session yet.
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil session before Save")
	}

	token := "tok"
	session := &service.LoginResult{
		User:  models.PublicUser{ID: 3, UserID: "u1", Name: "N", Email: "a@b.com", Phone: "555"},
		Token: &token,
	}
	if err := store.Save(session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err = store.Load()
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if got == nil {
		t.Fatal("expected session after Save")
	}
	if got.User.UserID != "u1" || got.Token == nil || *got.Token != "tok" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err = store.Load()
	if err != nil || got != nil {
		t.Fatalf("expected no session after Clear, got %+v err %v", got, err)
	}

	// Clearing again is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestLoad_CorruptFileIsNoSession(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Fatal("corrupt session file must behave like no session")
	}
}

func TestLoad_EmptyUserIsNoSession(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.path, []byte(`{"user":{},"token":null}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Fatal("empty stored user must behave like no session")
	}
}
