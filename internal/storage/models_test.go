package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserUnmarshal_IDVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"id field", `{"id":"abc","email":"a@b.co"}`, "abc"},
		{"mongo id field", `{"_id":"665f0c","username":"reader"}`, "665f0c"},
		{"numeric id", `{"id":42}`, "42"},
		{"id wins over _id", `{"id":"x","_id":"y"}`, "x"},
		{"no id", `{"username":"ghost"}`, ""},
		{"null id", `{"id":null,"_id":"z"}`, "z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.in), &u))
			assert.Equal(t, tt.want, u.ID)
		})
	}
}

func TestUserValidate(t *testing.T) {
	assert.ErrorIs(t, User{}.Validate(), ErrMalformedUser)
	assert.NoError(t, User{ID: "1"}.Validate())
}

func TestArticleFavoriteTrimsFields(t *testing.T) {
	published := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Article{
		Title:         "Headline",
		URL:           "https://news.test/1",
		Abstract:      "Short",
		Section:       "science",
		Subsection:    "space",
		Byline:        "By Someone",
		PublishedDate: published,
		Multimedia: []Multimedia{
			{URL: "https://img.test/large.jpg", Format: "Super Jumbo"},
			{URL: "https://img.test/thumb.jpg", Format: "thumbLarge"},
		},
	}

	fav := a.Favorite()

	assert.Equal(t, "Headline", fav.Title)
	assert.Equal(t, "https://news.test/1", fav.URL)
	assert.Equal(t, "Short", fav.Abstract)
	assert.Equal(t, "science", fav.Section)
	assert.Equal(t, "https://img.test/large.jpg", fav.ImageURL)
	require.NotNil(t, fav.PublishedDate)
	assert.True(t, fav.PublishedDate.Equal(published))

	data, err := json.Marshal(fav)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "byline")
	assert.NotContains(t, string(data), "subsection")
}

func TestArticleFavoriteWithoutDate(t *testing.T) {
	fav := Article{Title: "t", URL: "u"}.Favorite()
	assert.Nil(t, fav.PublishedDate)
	assert.Empty(t, fav.ImageURL)
}

func TestProfileMergeAndDisplayName(t *testing.T) {
	base := ProfileFields{FirstName: "Ada", Bio: "old"}
	merged := base.Merge(ProfileFields{Bio: "new", Location: "London"})

	assert.Equal(t, "Ada", merged.FirstName)
	assert.Equal(t, "new", merged.Bio)
	assert.Equal(t, "London", merged.Location)

	p := Profile{User: User{ID: "1", Username: "ada"}, Profile: merged}
	assert.Equal(t, "Ada", p.DisplayName())

	p.Profile.LastName = "Lovelace"
	assert.Equal(t, "Ada Lovelace", p.DisplayName())

	assert.Equal(t, "ada", Profile{User: User{Username: "ada"}}.DisplayName())
	assert.Equal(t, "a@b.co", Profile{User: User{Email: "a@b.co"}}.DisplayName())
}

func TestFavoritesOwner(t *testing.T) {
	tests := []struct {
		key  string
		id   string
		isOK bool
	}{
		{FavoritesKey("u1"), "u1", true},
		{FavoritesKey("a_b"), "a_b", true},
		{"user_favorites", "", false},
		{"user__favorites", "", false},
		{KeySession, "", false},
		{"user_u1", "", false},
	}
	for _, tt := range tests {
		id, ok := FavoritesOwner(tt.key)
		assert.Equal(t, tt.isOK, ok, tt.key)
		assert.Equal(t, tt.id, id, tt.key)
	}
}
