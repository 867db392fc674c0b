package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ad-funnel-gate/backend"
	"ad-funnel-gate/model"
)

// fakeBackend is an in-memory stand-in for the remote REST and identity API.
type fakeBackend struct {
	mu        sync.Mutex
	links     map[string]model.ShortLink
	data      map[string]model.UserData
	profiles  []model.Profile
	roles     map[string]string
	signedOut []string
	nextID    int
	session   model.IdentitySession
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		links: map[string]model.ShortLink{},
		data:  map[string]model.UserData{},
		roles: map[string]string{},
	}
}

func (f *fakeBackend) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeBackend) ListLinks(ctx context.Context) ([]model.ShortLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	links := make([]model.ShortLink, 0, len(f.links))
	for _, l := range f.links {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].CreatedAt.After(links[j].CreatedAt) })
	return links, nil
}

func (f *fakeBackend) LinkByCode(ctx context.Context, code string) (model.ShortLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[code]
	if !ok {
		return model.ShortLink{}, backend.ErrNotFound
	}
	return l, nil
}

func (f *fakeBackend) CodeExists(ctx context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.links[code]
	return ok, nil
}

func (f *fakeBackend) CreateLink(ctx context.Context, code, originalURL, userID string) (model.ShortLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[code]; ok {
		return model.ShortLink{}, &backend.APIError{Status: 409, Code: "23505", Message: "duplicate key"}
	}
	l := model.ShortLink{ID: f.id(), ShortCode: code, OriginalURL: originalURL, UserID: userID, CreatedAt: time.Now()}
	f.links[code] = l
	return l, nil
}

func (f *fakeBackend) DeleteLink(ctx context.Context, id string) (model.ShortLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, l := range f.links {
		if l.ID == id {
			delete(f.links, code)
			return l, nil
		}
	}
	return model.ShortLink{}, backend.ErrNotFound
}

func (f *fakeBackend) IncrementClicks(ctx context.Context, code string, seen int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[code]
	if !ok {
		return 0, backend.ErrNotFound
	}
	l.ClickCount++
	f.links[code] = l
	return l.ClickCount, nil
}

func (f *fakeBackend) CountLinksByUser(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.links {
		if l.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeBackend) GetUserData(ctx context.Context, userID string) (model.UserData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.data[userID]
	if !ok {
		return model.UserData{}, backend.ErrNotFound
	}
	return d, nil
}

func (f *fakeBackend) CreateUserData(ctx context.Context, data model.UserData) (model.UserData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[data.UserID]; ok {
		return model.UserData{}, backend.ErrConflict
	}
	data.ID = f.id()
	data.CreatedAt = time.Now()
	f.data[data.UserID] = data
	return data, nil
}

func (f *fakeBackend) UpdateUserData(ctx context.Context, userID string, patch model.UserDataPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.data[userID]
	if !ok {
		return backend.ErrNotFound
	}
	if patch.Ads != nil {
		d.Ads = *patch.Ads
	}
	if patch.Countdown != nil {
		d.Countdown = *patch.Countdown
	}
	if patch.ShortLinks != nil {
		d.ShortLinks = *patch.ShortLinks
	}
	if patch.Analytics != nil {
		d.Analytics = *patch.Analytics
	}
	d.UpdatedAt = time.Now()
	f.data[userID] = d
	return nil
}

func (f *fakeBackend) DeleteUserData(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, userID)
	return nil
}

func (f *fakeBackend) ListUserData(ctx context.Context) ([]model.UserData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]model.UserData, 0, len(f.data))
	for _, d := range f.data {
		all = append(all, d)
	}
	return all, nil
}

func (f *fakeBackend) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Profile(nil), f.profiles...), nil
}

func (f *fakeBackend) UserRole(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[userID]
	if !ok {
		return "", backend.ErrNotFound
	}
	return role, nil
}

func (f *fakeBackend) SetUserRole(ctx context.Context, userID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[userID] = role
	return nil
}

func (f *fakeBackend) SignUp(ctx context.Context, req model.SignUpRequest) (model.IdentitySession, error) {
	if strings.HasPrefix(req.Email, "taken@") {
		return model.IdentitySession{}, &backend.APIError{Status: 422, Message: "User already registered"}
	}
	return f.session, nil
}

func (f *fakeBackend) SignIn(ctx context.Context, req model.SignInRequest) (model.IdentitySession, error) {
	if req.Password != "right" {
		return model.IdentitySession{}, &backend.APIError{Status: 400, Message: "Invalid login credentials"}
	}
	return f.session, nil
}

func (f *fakeBackend) SignOut(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, token)
	return nil
}
