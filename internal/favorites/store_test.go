package favorites

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/ellux/internal/storage"
)

func setupTestStore(t *testing.T) (*Store, *storage.Store) {
	t.Helper()
	kv, err := storage.NewStore(filepath.Join(t.TempDir(), "favorites.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return NewStore(kv), kv
}

func article(url string) storage.Article {
	return storage.Article{
		Title:         "Title " + url,
		URL:           url,
		Abstract:      "Abstract " + url,
		Section:       "world",
		Subsection:    "europe",
		Byline:        "By Someone",
		PublishedDate: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		Multimedia: []storage.Multimedia{
			{URL: "https://img.example.com/" + url + ".jpg", Format: "Large"},
			{URL: "https://img.example.com/" + url + "-thumb.jpg"},
		},
	}
}

func urls(list []storage.FavoriteArticle) []string {
	out := make([]string, 0, len(list))
	for _, f := range list {
		out = append(out, f.URL)
	}
	return out
}

// failingKV reads like an empty store and refuses every write.
type failingKV struct{}

func (failingKV) Get(string, any) bool { return false }
func (failingKV) Set(string, any) bool { return false }
func (failingKV) Remove(string)        {}

type recordingListener struct {
	calls map[string][]string
}

func (r *recordingListener) OnFavoritesChanged(userID string, list []storage.FavoriteArticle) {
	if r.calls == nil {
		r.calls = make(map[string][]string)
	}
	r.calls[userID] = urls(list)
}

func TestList_Empty(t *testing.T) {
	s, _ := setupTestStore(t)

	assert.Empty(t, s.List(""))
	assert.NotNil(t, s.List(""))
	assert.Empty(t, s.List("u1"))
	assert.Empty(t, s.ListAnonymous())
}

func TestToggle_AddsTrimmedCopy(t *testing.T) {
	s, _ := setupTestStore(t)

	require.True(t, s.Toggle("u1", article("a")))
	list := s.List("u1")
	require.Len(t, list, 1)

	fav := list[0]
	assert.Equal(t, "Title a", fav.Title)
	assert.Equal(t, "a", fav.URL)
	assert.Equal(t, "Abstract a", fav.Abstract)
	assert.Equal(t, "world", fav.Section)
	assert.Equal(t, "https://img.example.com/a.jpg", fav.ImageURL, "first multimedia url becomes the image")
	require.NotNil(t, fav.PublishedDate)
	assert.True(t, fav.PublishedDate.Equal(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)))
	assert.True(t, s.Contains("u1", "a"))
}

func TestToggle_TwiceRestoresList(t *testing.T) {
	s, _ := setupTestStore(t)
	require.True(t, s.Toggle("u1", article("a")))
	require.True(t, s.Toggle("u1", article("b")))
	before := s.List("u1")

	require.True(t, s.Toggle("u1", article("c")))
	assert.Len(t, s.List("u1"), len(before)+1)
	require.True(t, s.Toggle("u1", article("c")))

	assert.Equal(t, before, s.List("u1"))
	assert.False(t, s.Contains("u1", "c"))
}

func TestToggle_RejectsBadInput(t *testing.T) {
	s, _ := setupTestStore(t)

	assert.False(t, s.Toggle("", article("a")))
	assert.False(t, s.Toggle("u1", storage.Article{Title: "no url"}))
	assert.Empty(t, s.List("u1"))
}

func TestToggle_PersistenceFailure(t *testing.T) {
	s := NewStore(failingKV{})

	assert.False(t, s.Toggle("u1", article("a")))
	assert.False(t, s.ToggleAnonymous(article("a")))
	assert.Equal(t, 0, s.MigrateAnonymous("u1"))
}

func TestToggle_UsersAreIsolated(t *testing.T) {
	s, _ := setupTestStore(t)
	require.True(t, s.Toggle("u1", article("a")))
	require.True(t, s.Toggle("u2", article("b")))

	assert.Equal(t, []string{"a"}, urls(s.List("u1")))
	assert.Equal(t, []string{"b"}, urls(s.List("u2")))
	assert.False(t, s.Contains("u2", "a"))
}

func TestRemoveAt(t *testing.T) {
	s, _ := setupTestStore(t)
	require.True(t, s.Toggle("u1", article("a")))
	require.True(t, s.Toggle("u1", article("b")))
	require.True(t, s.Toggle("u1", article("c")))
	assert.Equal(t, []string{"a", "b", "c"}, urls(s.List("u1")))

	s.RemoveAt("u1", 1)
	assert.Equal(t, []string{"a", "c"}, urls(s.List("u1")))

	s.RemoveAt("u1", 5)
	s.RemoveAt("u1", -1)
	assert.Equal(t, []string{"a", "c"}, urls(s.List("u1")), "out of range index is a no-op")
}

func TestMigrateAnonymous(t *testing.T) {
	s, kv := setupTestStore(t)
	require.True(t, s.Toggle("u1", article("shared")))
	require.True(t, s.ToggleAnonymous(article("anon-1")))
	require.True(t, s.ToggleAnonymous(article("shared")))
	require.True(t, s.ToggleAnonymous(article("anon-2")))

	assert.Equal(t, 2, s.MigrateAnonymous("u1"))
	assert.Equal(t, []string{"shared", "anon-1", "anon-2"}, urls(s.List("u1")))
	assert.False(t, kv.Has(storage.KeyAnonymousFavorites))

	assert.Equal(t, 0, s.MigrateAnonymous("u1"), "second migration finds nothing")
	assert.Len(t, s.List("u1"), 3)
}

func TestMigrateAnonymous_NothingNewKeepsAnonymousSet(t *testing.T) {
	s, kv := setupTestStore(t)
	require.True(t, s.Toggle("u1", article("a")))
	require.True(t, s.ToggleAnonymous(article("a")))

	assert.Equal(t, 0, s.MigrateAnonymous("u1"))
	assert.True(t, kv.Has(storage.KeyAnonymousFavorites))
	assert.Equal(t, 0, s.MigrateAnonymous(""))
}

func TestDeleteAll(t *testing.T) {
	s, kv := setupTestStore(t)
	require.True(t, s.Toggle("u1", article("a")))

	s.DeleteAll("u1")
	assert.Empty(t, s.List("u1"))
	assert.False(t, kv.Has(storage.FavoritesKey("u1")))
}

func TestListenersSeeEveryChange(t *testing.T) {
	s, _ := setupTestStore(t)
	l := &recordingListener{}
	s.AddListener(l)
	s.AddListener(nil)

	require.True(t, s.Toggle("u1", article("a")))
	require.True(t, s.Toggle("u1", article("b")))
	assert.Equal(t, []string{"a", "b"}, l.calls["u1"])

	s.RemoveAt("u1", 0)
	assert.Equal(t, []string{"b"}, l.calls["u1"])

	require.True(t, s.ToggleAnonymous(article("x")))
	assert.Equal(t, []string{"x"}, l.calls[""])

	s.DeleteAll("u1")
	assert.Empty(t, l.calls["u1"])
}

func TestCorruptSetReadsAsEmpty(t *testing.T) {
	s, kv := setupTestStore(t)
	require.True(t, kv.Set(storage.FavoritesKey("u1"), map[string]string{"not": "a list"}))

	assert.Empty(t, s.List("u1"))
	require.True(t, s.Toggle("u1", article("a")))
	assert.Equal(t, []string{"a"}, urls(s.List("u1")))
}
