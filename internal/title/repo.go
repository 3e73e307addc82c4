package title

import "context"

// Repository stores title economic state. Put is an upsert; implementations
// normalize state on the way in so callers never see derivable fields drift.
type Repository interface {
	Get(ctx context.Context, id ID) (State, bool, error)
	Put(ctx context.Context, st State) (State, error)
	List(ctx context.Context) ([]State, error)
	Delete(ctx context.Context, id ID) (bool, error)
}
