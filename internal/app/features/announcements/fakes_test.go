package announcements_test

import (
	"context"
	"sync"

	announcementstore "github.com/dalemusser/hsms/internal/app/store/announcements"
	"github.com/dalemusser/hsms/internal/app/system/authz"
	"github.com/dalemusser/hsms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory AnnouncementStore that keeps insertion order.
type memStore struct {
	mu    sync.Mutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]models.Announcement
	calls int
	err   error
}

func newMemStore() *memStore {
	return &memStore{docs: map[primitive.ObjectID]models.Announcement{}}
}

func (m *memStore) List(context.Context) ([]models.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Announcement, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.docs[id])
	}
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, id primitive.ObjectID) (models.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return models.Announcement{}, m.err
	}
	a, ok := m.docs[id]
	if !ok {
		return models.Announcement{}, announcementstore.ErrNotFound
	}
	return a, nil
}

func (m *memStore) Create(_ context.Context, a models.Announcement) (models.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return models.Announcement{}, m.err
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.docs[a.ID] = a
	m.order = append(m.order, a.ID)
	return a, nil
}

func (m *memStore) Update(_ context.Context, id primitive.ObjectID, in announcementstore.UpdateInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	a, ok := m.docs[id]
	if !ok {
		return announcementstore.ErrNotFound
	}
	if in.Message != nil {
		a.Message = *in.Message
	}
	if in.ClearStartDate {
		a.StartDate = nil
	} else if in.StartDate != nil {
		v := *in.StartDate
		a.StartDate = &v
	}
	if in.ExpirationDate != nil {
		a.ExpirationDate = *in.ExpirationDate
	}
	a.UpdatedBy = in.UpdatedBy
	a.UpdatedAt = in.UpdatedAt
	m.docs[id] = a
	return nil
}

func (m *memStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if _, ok := m.docs[id]; !ok {
		return announcementstore.ErrNotFound
	}
	delete(m.docs, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore) seed(a models.Announcement) models.Announcement {
	a, _ = m.Create(context.Background(), a)
	m.calls = 0
	return a
}

// memTeachers is a TeacherFinder over a fixed set of usernames.
type memTeachers map[string]bool

func (t memTeachers) Exists(_ context.Context, username string) (bool, error) {
	return t[username], nil
}

func newAuthorizer(usernames ...string) *authz.Authorizer {
	t := memTeachers{}
	for _, u := range usernames {
		t[u] = true
	}
	return authz.New(t)
}

func strPtr(s string) *string { return &s }
