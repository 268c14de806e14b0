package pages

import (
	"context"

	"github.com/pders01/ellux/internal/backend"
	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/storage"
)

const profilePath = "/profile.html"

// Profile shows and edits the account profile.
type Profile struct {
	svc *Services
}

func NewProfile(svc *Services) *Profile {
	return &Profile{svc: svc}
}

// Cached returns the profile stored locally, if any.
func (p *Profile) Cached() (storage.Profile, bool) {
	var cached storage.Profile
	ok := p.svc.KV.Get(storage.KeyProfile, &cached)
	return cached, ok
}

// Load fetches the profile, merges it over the cache and stores the result.
// When the fetch fails but a cached copy exists, the cache is returned with
// stale set.
func (p *Profile) Load(ctx context.Context) (profile storage.Profile, stale bool, err error) {
	if err := p.svc.guard(profilePath); err != nil {
		return storage.Profile{}, false, err
	}
	token, err := p.svc.Gate.Token()
	if err != nil {
		return storage.Profile{}, false, &Redirect{To: p.svc.Gate.Routes().Signin}
	}

	cached, hasCache := p.Cached()
	fresh, err := p.svc.Backend.GetProfile(ctx, token)
	if err != nil {
		if backend.StatusOf(err) == 401 {
			p.svc.Gate.Clear()
			return storage.Profile{}, false, userError("profile", backend.OpProfile, err)
		}
		if hasCache {
			debuglog.Warnf("profile fetch failed, showing cached copy: %v", err)
			return cached, true, nil
		}
		return storage.Profile{}, false, userError("profile", backend.OpProfile, err)
	}

	merged := mergeProfile(cached, fresh)
	if merged.User.ID == "" {
		if s, ok := p.svc.Gate.Current(); ok {
			merged.User = s.User
		}
	}
	p.svc.KV.Set(storage.KeyProfile, merged)
	return merged, false, nil
}

// Update sends the cached fields overlaid with update and caches what the
// service returns, merged over the old copy.
func (p *Profile) Update(ctx context.Context, update storage.ProfileFields) (storage.Profile, error) {
	token, err := p.svc.Gate.Token()
	if err != nil {
		return storage.Profile{}, expired(err)
	}

	cached, _ := p.Cached()
	outgoing := cached.Profile.Merge(update)
	returned, err := p.svc.Backend.UpdateProfile(ctx, token, outgoing)
	if err != nil {
		return storage.Profile{}, userError("profile", backend.OpProfile, err)
	}

	complete := storage.Profile{User: cached.User, Profile: outgoing.Merge(returned.Profile)}
	if returned.User.ID != "" {
		complete.User = returned.User
	}
	p.svc.KV.Set(storage.KeyProfile, complete)
	return complete, nil
}

// Delete removes the account, then the session, the cached profile and the
// user's favorites.
func (p *Profile) Delete(ctx context.Context) error {
	token, err := p.svc.Gate.Token()
	if err != nil {
		return expired(err)
	}
	uid, _ := p.svc.Gate.CurrentUserID()

	if err := p.svc.Backend.DeleteProfile(ctx, token); err != nil {
		return userError("profile", backend.OpProfile, err)
	}

	p.svc.Gate.Clear()
	p.svc.Favorites.DeleteAll(uid)
	return nil
}

func mergeProfile(cached, fresh storage.Profile) storage.Profile {
	out := storage.Profile{User: cached.User, Profile: cached.Profile.Merge(fresh.Profile)}
	if fresh.User.ID != "" {
		out.User = fresh.User
	}
	return out
}

// expired is the error shown when an edit is attempted without a session.
func expired(err error) error {
	return &UserError{Message: backend.MsgExpired, Err: err}
}
