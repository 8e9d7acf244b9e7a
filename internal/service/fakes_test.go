package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"metacognition/internal/model"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	listErr  error
}

func newFakeSessionRepo(sessions ...*model.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: make(map[string]*model.Session)}
	for _, s := range sessions {
		r.sessions[s.ID] = s
	}
	return r
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = primitive.NewObjectID().Hex()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Chunks = append([]model.Chunk(nil), s.Chunks...)
	return &cp, nil
}

func (r *fakeSessionRepo) ListByUser(ctx context.Context, userID string, limit, skip int64) ([]*model.Session, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > skip {
		out = out[skip:]
	} else {
		out = nil
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSessionRepo) UpdateProgress(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) UpdateStats(ctx context.Context, id string, stats model.SessionStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("no session %s", id)
	}
	s.SessionStats = stats
	return nil
}

type fakeResponseRepo struct {
	mu        sync.Mutex
	responses []*model.Response
	failFor   map[string]error
	// block, when set, makes ListBySession wait for context cancellation
	block bool
}

func (r *fakeResponseRepo) Create(ctx context.Context, response *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	response.ID = primitive.NewObjectID().Hex()
	cp := *response
	r.responses = append(r.responses, &cp)
	return nil
}

func (r *fakeResponseRepo) GetByID(ctx context.Context, id string) (*model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.responses {
		if resp.ID == id {
			cp := *resp
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeResponseRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Response, error) {
	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := r.failFor[sessionID]; err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Response
	for _, resp := range r.responses {
		if resp.SessionID.Hex() == sessionID {
			cp := *resp
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeResponseRepo) UpdateReflection(ctx context.Context, id string, update model.ReflectionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.responses {
		if resp.ID == id {
			update.Apply(resp)
			return nil
		}
	}
	return errors.New("not found")
}

func (r *fakeResponseRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, resp := range r.responses {
		if resp.ID == id {
			r.responses = append(r.responses[:i], r.responses[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeSessionCache struct {
	mu      sync.Mutex
	items   map[string]*model.Session
	deletes int
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{items: make(map[string]*model.Session)}
}

func (c *fakeSessionCache) Set(ctx context.Context, session *model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *session
	c.items[session.ID] = &cp
	return nil
}

func (c *fakeSessionCache) Get(ctx context.Context, id string) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (c *fakeSessionCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.deletes++
	return nil
}

type fakeUserRepo struct {
	users   map[string]*model.User
	touched int
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if r.users == nil {
		r.users = make(map[string]*model.User)
	}
	user.ID = primitive.NewObjectID().Hex()
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.users[email], nil
}

func (r *fakeUserRepo) Touch(ctx context.Context, id string) error {
	r.touched++
	return nil
}

type fakeTokenCache struct {
	revoked map[string]time.Time
}

func (c *fakeTokenCache) Revoke(ctx context.Context, jti string, until time.Time) error {
	if c.revoked == nil {
		c.revoked = make(map[string]time.Time)
	}
	c.revoked[jti] = until
	return nil
}

func (c *fakeTokenCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, ok := c.revoked[jti]
	return ok, nil
}

type notification struct {
	userID  string
	msgType string
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []notification
}

func (b *recordingBroadcaster) NotifyUser(userID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, notification{userID: userID, msgType: msgType})
}
