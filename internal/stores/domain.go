package stores

import "time"

// Store is a point of sale.
type Store struct {
	ID        int64
	Name      string
	Address   string
	Phone     string
	IsActive  bool
	CreatedAt time.Time
}

// Scope is the store context resolved for a request. A nil StoreID is a
// valid scope: the caller has not picked a store yet and store-scoped
// screens render their empty state.
type Scope struct {
	StoreID *int64
}

// Selected reports whether a store is in scope.
func (s Scope) Selected() bool {
	return s.StoreID != nil
}
