package storage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SetAndGet(t *testing.T) {
	store := setupTestStore(t)

	published := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	favs := []FavoriteArticle{
		{Title: "A", URL: "https://news.test/a", PublishedDate: &published},
		{Title: "B", URL: "https://news.test/b", Section: "world"},
	}

	if !store.Set(FavoritesKey("u1"), favs) {
		t.Fatal("Set returned false")
	}

	var got []FavoriteArticle
	if !store.Get(FavoritesKey("u1"), &got) {
		t.Fatal("Get returned false for stored key")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(got))
	}
	if got[0].PublishedDate == nil || !got[0].PublishedDate.Equal(published) {
		t.Errorf("published date not round-tripped: %v", got[0].PublishedDate)
	}
	if got[1].Section != "world" {
		t.Errorf("expected section world, got %q", got[1].Section)
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	store := setupTestStore(t)

	var v string
	if store.Get("missing", &v) {
		t.Error("Get should report false for a missing key")
	}
	if err := store.Load("missing", &v); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetUndecodableValue(t *testing.T) {
	store := setupTestStore(t)

	err := store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).Put([]byte("broken"), []byte("{not json"))
	})
	if err != nil {
		t.Fatal(err)
	}

	var v map[string]any
	if store.Get("broken", &v) {
		t.Error("Get should report false for undecodable data")
	}
	if err := store.Load("broken", &v); !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
	if !store.Has("broken") {
		t.Error("Has should report true for a present but undecodable key")
	}
}

func TestStore_SetUnencodableValue(t *testing.T) {
	store := setupTestStore(t)

	if store.Set("chan", make(chan int)) {
		t.Error("Set should fail for values json cannot encode")
	}
	if store.Has("chan") {
		t.Error("failed Set must not leave a value behind")
	}
}

func TestStore_Remove(t *testing.T) {
	store := setupTestStore(t)

	store.Set(KeyTempEmail, "someone@news.test")
	store.Remove(KeyTempEmail)
	store.Remove("never-existed")

	if store.Has(KeyTempEmail) {
		t.Error("key should be gone after Remove")
	}
}

func TestStore_KeysAndClear(t *testing.T) {
	store := setupTestStore(t)

	for _, k := range []string{FavoritesKey("b"), FavoritesKey("a"), KeySession, KeyAnonymousFavorites} {
		if !store.Set(k, json.RawMessage(`[]`)) {
			t.Fatalf("Set(%q) failed", k)
		}
	}

	keys, err := store.Keys("user_")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "user_a_favorites" || keys[1] != "user_b_favorites" {
		t.Errorf("unexpected keys: %v", keys)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	all, err := store.Keys("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty store after Clear, got %v", all)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "reopen.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	store.Set(KeyLastVisited, time.Unix(1700000000, 0).UTC())
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	store, err = NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	var visited time.Time
	if !store.Get(KeyLastVisited, &visited) {
		t.Fatal("value lost after reopen")
	}
	if visited.Unix() != 1700000000 {
		t.Errorf("unexpected value %v", visited)
	}
}
