package title

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu sync.RWMutex
	m  map[ID]State
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{m: map[ID]State{}}
}

func (r *MemoryRepo) Seed(ctx context.Context, states []State) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range states {
		s.Normalize()
		r.m[s.ID] = s
	}
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id ID) (State, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.m[id]
	return s, ok, nil
}

func (r *MemoryRepo) Put(ctx context.Context, st State) (State, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	st.Normalize()
	r.m[st.ID] = st
	return st, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]State, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]State, 0, len(r.m))
	for _, s := range r.m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id ID) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return false, nil
	}
	delete(r.m, id)
	return true, nil
}
