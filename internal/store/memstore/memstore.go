// Package memstore is an in-process implementation of the store contracts.
// It keeps the same ordering and not-found semantics as mongostore.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/models"
	"verdant/internal/store"
)

type DB struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]models.User
	products map[primitive.ObjectID]models.Product
	orders   map[primitive.ObjectID]models.Order
	projects map[primitive.ObjectID]models.Project
	tasks    map[primitive.ObjectID]models.Task
	comments map[primitive.ObjectID]models.Comment
}

func New() *DB {
	return &DB{
		users:    map[primitive.ObjectID]models.User{},
		products: map[primitive.ObjectID]models.Product{},
		orders:   map[primitive.ObjectID]models.Order{},
		projects: map[primitive.ObjectID]models.Project{},
		tasks:    map[primitive.ObjectID]models.Task{},
		comments: map[primitive.ObjectID]models.Comment{},
	}
}

// Store exposes db through the store contracts.
func (db *DB) Store() *store.Store {
	return &store.Store{
		Users:    users{db},
		Products: products{db},
		Orders:   orders{db},
		Projects: projects{db},
		Tasks:    tasks{db},
		Comments: comments{db},
		Tx:       db,
		Ping:     func(context.Context) error { return nil },
		Close:    func(context.Context) error { return nil },
	}
}

// WithTransaction runs fn directly; memstore offers no rollback.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newID(id primitive.ObjectID) primitive.ObjectID {
	if id.IsZero() {
		return primitive.NewObjectID()
	}
	return id
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return nil
	}
	return append([]primitive.ObjectID(nil), ids...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// newestFirst orders by timestamp descending, then id descending.
func newestFirst(a, b time.Time, ida, idb primitive.ObjectID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return ida.Hex() > idb.Hex()
}

func oldestFirst(a, b time.Time, ida, idb primitive.ObjectID) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return ida.Hex() < idb.Hex()
}

type users struct{ db *DB }

func (r users) Create(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.ID = newID(u.ID)
	r.db.users[u.ID] = *u
	return nil
}

func (r users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (r users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r users) FindMany(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.User, 0, len(ids))
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, u)
		}
	}
	return out, nil
}

type products struct{ db *DB }

func (r products) Create(_ context.Context, p *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p.ID = newID(p.ID)
	r.db.products[p.ID] = *p
	return nil
}

func (r products) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (r products) List(_ context.Context, f store.ProductFilter) ([]models.Product, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Product{}
	for _, p := range r.db.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	total := int64(len(out))
	if f.Page.Limit > 0 {
		start := min(f.Page.Skip, total)
		end := min(start+f.Page.Limit, total)
		out = out[start:end]
	}
	return out, total, nil
}

func (r products) Update(_ context.Context, id primitive.ObjectID, patch store.ProductPatch) (*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.PlantCare != nil {
		p.PlantCare = *patch.PlantCare
	}
	if patch.Size != nil {
		p.Size = *patch.Size
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	r.db.products[id] = p
	return &p, nil
}

func (r products) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.products, id)
	return nil
}

type orders struct{ db *DB }

func (r orders) Create(_ context.Context, o *models.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o.ID = newID(o.ID)
	stored := *o
	stored.Items = append([]models.OrderItem(nil), o.Items...)
	r.db.orders[o.ID] = stored
	return nil
}

func (r orders) list(keep func(models.Order) bool) []models.Order {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Order{}
	for _, o := range r.db.orders {
		if keep(o) {
			o.Items = append([]models.OrderItem(nil), o.Items...)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].PlacedAt, out[j].PlacedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (r orders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r orders) ListAll(context.Context) ([]models.Order, error) {
	return r.list(func(models.Order) bool { return true }), nil
}

func (r orders) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o.Status = status
	r.db.orders[id] = o
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o, nil
}

type projects struct{ db *DB }

func copyProject(p models.Project) models.Project {
	p.Members = cloneIDs(p.Members)
	p.EndDate = cloneTime(p.EndDate)
	return p
}

func (r projects) Create(_ context.Context, p *models.Project) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p.ID = newID(p.ID)
	r.db.projects[p.ID] = copyProject(*p)
	return nil
}

func (r projects) FindByID(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p = copyProject(p)
	return &p, nil
}

func (r projects) List(_ context.Context, f store.ProjectFilter) ([]models.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Project{}
	for _, p := range r.db.projects {
		if !f.Member.IsZero() && !p.HasAccess(f.Member) {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, copyProject(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r projects) Count(_ context.Context, member primitive.ObjectID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, p := range r.db.projects {
		if p.HasAccess(member) {
			n++
		}
	}
	return n, nil
}

func (r projects) EndingBetween(_ context.Context, tr store.TimeRange) ([]models.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Project{}
	for _, p := range r.db.projects {
		if p.EndDate != nil && tr.Contains(*p.EndDate) {
			out = append(out, copyProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(*out[i].EndDate, *out[j].EndDate, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r projects) Update(_ context.Context, id primitive.ObjectID, patch store.ProjectPatch) (*models.Project, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.EndDate != nil {
		p.EndDate = cloneTime(patch.EndDate)
	}
	if patch.Members != nil {
		p.Members = cloneIDs(patch.Members)
	}
	p.UpdatedAt = patch.UpdatedAt
	r.db.projects[id] = p
	p = copyProject(p)
	return &p, nil
}

func (r projects) Touch(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.projects[id]
	if !ok {
		return store.ErrNotFound
	}
	p.UpdatedAt = at
	r.db.projects[id] = p
	return nil
}

func (r projects) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.projects, id)
	return nil
}

type tasks struct{ db *DB }

func copyTask(t models.Task) models.Task {
	t.DueDate = cloneTime(t.DueDate)
	if t.AssignedTo != nil {
		a := *t.AssignedTo
		t.AssignedTo = &a
	}
	return t
}

func matchTask(t models.Task, f store.TaskFilter) bool {
	if f.Project != nil && t.Project != *f.Project {
		return false
	}
	if f.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *f.AssignedTo) {
		return false
	}
	return true
}

func (r tasks) Create(_ context.Context, t *models.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t.ID = newID(t.ID)
	r.db.tasks[t.ID] = copyTask(*t)
	return nil
}

func (r tasks) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	t = copyTask(t)
	return &t, nil
}

func (r tasks) List(_ context.Context, f store.TaskFilter) ([]models.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Task{}
	for _, t := range r.db.tasks {
		if matchTask(t, f) {
			out = append(out, copyTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r tasks) Count(_ context.Context, f store.TaskFilter) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, t := range r.db.tasks {
		if matchTask(t, f) {
			n++
		}
	}
	return n, nil
}

func (r tasks) DueBetween(_ context.Context, tr store.TimeRange) ([]models.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Task{}
	for _, t := range r.db.tasks {
		if t.DueDate != nil && tr.Contains(*t.DueDate) {
			out = append(out, copyTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(*out[i].DueDate, *out[j].DueDate, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r tasks) Update(_ context.Context, id primitive.ObjectID, patch store.TaskPatch) (*models.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	t.DueDate = cloneTime(patch.DueDate)
	t.AssignedTo = nil
	if patch.AssignedTo != nil {
		a := *patch.AssignedTo
		t.AssignedTo = &a
	}
	t.UpdatedAt = patch.UpdatedAt
	r.db.tasks[id] = t
	t = copyTask(t)
	return &t, nil
}

func (r tasks) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.tasks, id)
	return nil
}

type comments struct{ db *DB }

func (r comments) Create(_ context.Context, c *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.ID = newID(c.ID)
	r.db.comments[c.ID] = *c
	return nil
}

func (r comments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (r comments) ListByTask(_ context.Context, taskID primitive.ObjectID) ([]models.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range r.db.comments {
		if c.Task == taskID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r comments) UpdateText(_ context.Context, id primitive.ObjectID, text string, at time.Time) (*models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c.Text = text
	c.UpdatedAt = at
	r.db.comments[id] = c
	return &c, nil
}

func (r comments) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.comments, id)
	return nil
}
