package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedUser is returned when a stored or received user record has no
// usable identifier.
var ErrMalformedUser = errors.New("user record has no id")

// User is the canonical account record. The backend sends either "id" or
// "_id"; both decode into ID.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		MongoID  json.RawMessage `json:"_id"`
		Username string          `json:"username"`
		Email    string          `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := idString(raw.ID)
	if id == "" {
		id = idString(raw.MongoID)
	}
	*u = User{ID: id, Username: raw.Username, Email: raw.Email}
	return nil
}

// idString accepts string and numeric ids.
func idString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Validate rejects records without an id.
func (u User) Validate() error {
	if u.ID == "" {
		return ErrMalformedUser
	}
	return nil
}

// Session is the locally held proof of authentication.
type Session struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
	User     User      `json:"user"`
}

// Multimedia is one media attachment of a news article.
type Multimedia struct {
	URL     string `json:"url"`
	Format  string `json:"format,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// Article is a news item as delivered by a news source.
type Article struct {
	Title         string       `json:"title"`
	URL           string       `json:"url"`
	Abstract      string       `json:"abstract"`
	Section       string       `json:"section"`
	Subsection    string       `json:"subsection,omitempty"`
	Byline        string       `json:"byline,omitempty"`
	PublishedDate time.Time    `json:"published_date"`
	Multimedia    []Multimedia `json:"multimedia"`
}

// ImageURL returns the first multimedia url, if any.
func (a Article) ImageURL() string {
	for _, m := range a.Multimedia {
		if m.URL != "" {
			return m.URL
		}
	}
	return ""
}

// FavoriteArticle is the trimmed copy of an Article kept in a favorites set.
type FavoriteArticle struct {
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Abstract      string     `json:"abstract,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Section       string     `json:"section,omitempty"`
}

// Favorite trims an article down to the fields kept in a favorites set.
func (a Article) Favorite() FavoriteArticle {
	fav := FavoriteArticle{
		Title:    a.Title,
		URL:      a.URL,
		Abstract: a.Abstract,
		ImageURL: a.ImageURL(),
		Section:  a.Section,
	}
	if !a.PublishedDate.IsZero() {
		published := a.PublishedDate
		fav.PublishedDate = &published
	}
	return fav
}

// ProfileFields holds the editable part of a profile.
type ProfileFields struct {
	FirstName string `json:"firstName,omitempty" yaml:"first_name,omitempty"`
	LastName  string `json:"lastName,omitempty" yaml:"last_name,omitempty"`
	Bio       string `json:"bio,omitempty" yaml:"bio,omitempty"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty" yaml:"avatar_url,omitempty"`
}

// Merge returns p with every non-empty field of update applied.
func (p ProfileFields) Merge(update ProfileFields) ProfileFields {
	if update.FirstName != "" {
		p.FirstName = update.FirstName
	}
	if update.LastName != "" {
		p.LastName = update.LastName
	}
	if update.Bio != "" {
		p.Bio = update.Bio
	}
	if update.Location != "" {
		p.Location = update.Location
	}
	if update.AvatarURL != "" {
		p.AvatarURL = update.AvatarURL
	}
	return p
}

// Profile is the cached account profile.
type Profile struct {
	User    User          `json:"user"`
	Profile ProfileFields `json:"profile"`
}

// DisplayName prefers the full name, then the username, then the email.
func (p Profile) DisplayName() string {
	switch {
	case p.Profile.FirstName != "" && p.Profile.LastName != "":
		return fmt.Sprintf("%s %s", p.Profile.FirstName, p.Profile.LastName)
	case p.Profile.FirstName != "":
		return p.Profile.FirstName
	case p.User.Username != "":
		return p.User.Username
	default:
		return p.User.Email
	}
}
