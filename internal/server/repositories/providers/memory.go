package providers

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Provider
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.Provider)}
}

func (r *MemoryRepository) List(ctx context.Context) ([]models.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Provider, 0, len(r.items))
	for _, p := range r.items {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b models.Provider) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return list, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) Create(ctx context.Context, p *models.Provider) (*models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = uuid.NewString()
	r.items[p.ID] = *p
	return p, nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *models.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; !ok {
		return common.ErrorNotFound
	}
	r.items[p.ID] = *p
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.items, id)
	return nil
}
