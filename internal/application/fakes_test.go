package application

import (
	"context"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/davitren/storefront/internal/domain/entity"
	"github.com/davitren/storefront/internal/domain/repository"
)

// In-memory repository fakes. They implement the same contracts as the
// postgres implementations, including ErrNotFound semantics, so service
// tests exercise real error paths.

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	u.ID = "user-" + strconv.Itoa(r.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	tok := token
	exp := expiresAt
	u.ResetToken = &tok
	u.ResetTokenExpiresAt = &exp
	return nil
}

func (r *fakeUserRepo) GetByResetToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token && now.Before(*u.ResetTokenExpiresAt) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) RedeemResetToken(_ context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.ResetToken == nil {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiresAt = nil
	return nil
}

type fakeProductRepo struct {
	mu        sync.Mutex
	seq       int
	products  map[string]*entity.Product
	updateErr error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entity.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = "prod-" + strconv.Itoa(r.seq)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	cur, ok := r.products[p.ID]
	if !ok || cur.OwnerID != p.OwnerID {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) sorted() []entity.Product {
	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeProductRepo) List(_ context.Context, offset, limit int) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return window(r.sorted(), offset, limit), nil
}

func (r *fakeProductRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products), nil
}

func (r *fakeProductRepo) ListByOwner(_ context.Context, ownerID string, offset, limit int) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := make([]entity.Product, 0)
	for _, p := range r.sorted() {
		if p.OwnerID == ownerID {
			owned = append(owned, p)
		}
	}
	return window(owned, offset, limit), nil
}

func (r *fakeProductRepo) CountByOwner(_ context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.products {
		if p.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func window(ps []entity.Product, offset, limit int) []entity.Product {
	if offset >= len(ps) {
		return []entity.Product{}
	}
	end := offset + limit
	if end > len(ps) {
		end = len(ps)
	}
	return ps[offset:end]
}

// fakeImageStore records uploads keyed by the returned URL so tests can
// check which objects survive a write path.
type fakeImageStore struct {
	mu      sync.Mutex
	seq     int
	objects map[string]bool
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: map[string]bool{}}
}

func (s *fakeImageStore) Upload(_ context.Context, objectPath, _ string, _ io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	url := "https://img.test/" + strconv.Itoa(s.seq) + "/" + objectPath
	s.objects[url] = true
	return url, nil
}

func (s *fakeImageStore) Delete(_ context.Context, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, imageURL)
	return nil
}

func (s *fakeImageStore) stored() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for url := range s.objects {
		out = append(out, url)
	}
	sort.Strings(out)
	return out
}

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string][]entity.CartItem
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[string][]entity.CartItem{}}
}

func (r *fakeCartRepo) AddItem(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity++
			return nil
		}
	}
	r.carts[userID] = append(items, entity.CartItem{ProductID: productID, Quantity: 1})
	return nil
}

func (r *fakeCartRepo) RemoveItem(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			r.carts[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeCartRepo) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func (r *fakeCartRepo) Items(_ context.Context, userID string) ([]entity.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.carts[userID]
	out := make([]entity.CartItem, len(items))
	copy(out, items)
	return out, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	seq    int
	orders map[string]*entity.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*entity.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	o.ID = "order-" + strconv.Itoa(r.seq)
	o.CreatedAt = time.Now()
	cp := *o
	cp.Items = make([]entity.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	cp.Items = make([]entity.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
