package credstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sportsfed/console-gateway/internal/core/domain"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s, path
}

func TestFileStore_RoundTrip(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()

	user := &domain.User{
		ID:          "u1",
		Name:        "Alice",
		Email:       "alice@fed.example",
		AccessType:  domain.AccessSuperAdmin,
		Permissions: []string{"users.view"},
	}
	if err := s.Save(ctx, "tok-123", user); err != nil {
		t.Fatalf("Save: %v", err)
	}

	creds, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if creds == nil {
		t.Fatalf("expected credentials, got nil")
	}
	if creds.Token != "tok-123" {
		t.Fatalf("unexpected token: %q", creds.Token)
	}
	if creds.User == nil || creds.User.Email != "alice@fed.example" {
		t.Fatalf("unexpected user: %+v", creds.User)
	}
}

func TestFileStore_LoadAbsent(t *testing.T) {
	s, _ := newTestFileStore(t)

	creds, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load on empty store: %v", err)
	}
	if creds != nil {
		t.Fatalf("expected nil credentials, got %+v", creds)
	}
}

func TestFileStore_MalformedDataClearedNotReturned(t *testing.T) {
	s, path := newTestFileStore(t)

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write malformed file: %v", err)
	}

	creds, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load of malformed data must not error: %v", err)
	}
	if creds != nil {
		t.Fatalf("expected nil credentials, got %+v", creds)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("malformed state file should have been cleared")
	}
}

func TestFileStore_HalfPairTreatedAsAbsent(t *testing.T) {
	s, path := newTestFileStore(t)

	// Token without a paired user: well-formed JSON, but not a usable pair.
	if err := os.WriteFile(path, []byte(`{"token":"tok-123"}`), 0o600); err != nil {
		t.Fatalf("write half pair: %v", err)
	}

	creds, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if creds != nil {
		t.Fatalf("half-written pair should read as absent, got %+v", creds)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("half-written pair should have been cleared")
	}
}

func TestFileStore_NeverRoundTripsSecrets(t *testing.T) {
	s, path := newTestFileStore(t)
	ctx := context.Background()

	// A persisted record written by an older build that leaked extra fields:
	// decoding must drop anything secret-shaped, because the user type has no
	// field to carry it.
	raw := `{"token":"tok-123","user":{"id":"u1","email":"a@fed.example","access_type":"super_admin","password":"hunter2","password_hash":"x"}}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write state file: %v", err)
	}

	creds, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if creds == nil {
		t.Fatalf("expected credentials")
	}

	if err := s.Save(ctx, creds.Token, creds.User); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rewritten, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state file: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(rewritten, &generic); err != nil {
		t.Fatalf("decode state file: %v", err)
	}
	userDoc, _ := generic["user"].(map[string]any)
	if userDoc == nil {
		t.Fatalf("state file missing user document")
	}
	for _, secret := range []string{"password", "password_hash"} {
		if _, present := userDoc[secret]; present {
			t.Fatalf("secret field %q round-tripped into the store", secret)
		}
	}
}

func TestFileStore_ClearIsIdempotent(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}
	if err := s.Save(ctx, "tok", &domain.User{ID: "u1", AccessType: domain.AccessUser}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if creds, _ := s.Load(ctx); creds != nil {
		t.Fatalf("expected empty store after Clear, got %+v", creds)
	}
}
