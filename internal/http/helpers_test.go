package http_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/notes-service/internal/domain"
	api "github.com/tazhibayda/notes-service/internal/http"
	"github.com/tazhibayda/notes-service/internal/oauth"
	"github.com/tazhibayda/notes-service/internal/queue"
	"github.com/tazhibayda/notes-service/internal/repo"
	"github.com/tazhibayda/notes-service/internal/security"
	"github.com/tazhibayda/notes-service/internal/service"
)

// fakeUsers is an in-memory UserStore that enforces the same unique
// constraints as the Mongo indexes.
type fakeUsers struct {
	mu    sync.Mutex
	users []*domain.User
}

func (f *fakeUsers) CreateUser(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.users {
		if e.Email == u.Email {
			return repo.ErrDuplicate
		}
		for _, p := range u.AuthProviders {
			if e.HasProvider(p.Provider, p.ProviderID) {
				return repo.ErrDuplicate
			}
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	f.users = append(f.users, &cp)
	return nil
}

func (f *fakeUsers) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.users {
		if e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.users {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindUserByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.users {
		if e.HasProvider(provider, providerID) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) AddAuthProvider(ctx context.Context, userID primitive.ObjectID, provider, providerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.users {
		if e.ID != userID && e.HasProvider(provider, providerID) {
			return repo.ErrDuplicate
		}
	}
	for _, e := range f.users {
		if e.ID == userID {
			if !e.HasProvider(provider, providerID) {
				e.AuthProviders = append(e.AuthProviders, domain.AuthProvider{Provider: provider, ProviderID: providerID})
			}
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeUsers) SetProfileImage(ctx context.Context, userID primitive.ObjectID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.users {
		if e.ID == userID {
			e.ProfileImage = url
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// fakeNotes is an in-memory NotesStore.
type fakeNotes struct {
	mu    sync.Mutex
	notes []*domain.Note
}

func (f *fakeNotes) CreateNote(ctx context.Context, n *domain.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	cp := *n
	f.notes = append(f.notes, &cp)
	return nil
}

func (f *fakeNotes) ListNotesByAuthor(ctx context.Context, author primitive.ObjectID, p repo.ListParams) ([]domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Note{}
	for _, n := range f.notes {
		if n.Author == author {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotes) FindNoteByID(ctx context.Context, author, id primitive.ObjectID) (*domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notes {
		if n.ID == id && n.Author == author {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeNotes) UpdateNote(ctx context.Context, author, id primitive.ObjectID, upd repo.NoteUpdate) (*domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notes {
		if n.ID == id && n.Author == author {
			if upd.Title != nil {
				n.Title = *upd.Title
			}
			if upd.Description != nil {
				n.Description = *upd.Description
			}
			n.UpdatedAt = time.Now().UTC()
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeNotes) DeleteNote(ctx context.Context, author, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notes {
		if n.ID == id && n.Author == author {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// recPub records every publish so tests can assert routing.
type recPub struct {
	mu     sync.Mutex
	events []recEvent
}

type recEvent struct {
	Exchange string
	Key      string
}

func (r *recPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recEvent{Exchange: exchange, Key: key})
	return nil
}

func (r *recPub) Close() error { return nil }

func (r *recPub) snapshot() []recEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recEvent, len(r.events))
	copy(out, r.events)
	return out
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error {
	return errors.New("connection() error occurred during connection handshake")
}

// fakeProvider answers any code with a fixed profile.
type fakeProvider struct {
	name    string
	profile oauth.Profile
	err     error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (f *fakeProvider) FetchProfile(ctx context.Context, code string) (*oauth.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := f.profile
	return &cp, nil
}

type testEnv struct {
	Users    *fakeUsers
	Notes    *fakeNotes
	Provider *fakeProvider
	State    *oauth.StateSigner
	Issuer   *security.Issuer
	Handler  *api.Handler
	Router   *gin.Engine
}

func newTestEnv(t *testing.T, transport string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &fakeUsers{}
	notes := &fakeNotes{}
	iss := security.NewIssuer("test-secret", time.Hour)
	prov := &fakeProvider{
		name: "github",
		profile: oauth.Profile{
			Provider:   "github",
			ProviderID: "42",
			Email:      "octo@x.com",
			Username:   "octo",
			Picture:    "https://avatars.example/42.png",
		},
	}

	h := api.NewHandler(service.NewAuth(users), notes, iss, queue.NewNoop())
	h.State = oauth.NewStateSigner("state-secret")
	h.FrontendURL = "http://front.example"
	h.SessionTransport = transport
	h.CookieDomain = "front.example"
	h.AddProvider(prov)

	return &testEnv{
		Users:    users,
		Notes:    notes,
		Provider: prov,
		State:    h.State,
		Issuer:   iss,
		Handler:  h,
		Router:   api.NewRouter(h),
	}
}
