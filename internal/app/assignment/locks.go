// internal/app/assignment/locks.go
package assignment

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// productLocks serializes allocations per product. Grants for the same
// product take the same mutex, so snapshot-decide-commit runs as a unit;
// grants for different products never block each other.
//
// Locks are never released back to the map: the set of products is small
// and a mutex is a few bytes. The unique indexes on group_memberships
// remain the backstop for multi-instance deployments.
type productLocks struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

func newProductLocks() *productLocks {
	return &productLocks{locks: make(map[primitive.ObjectID]*sync.Mutex)}
}

// get returns the mutex for a product, creating it on first use.
func (p *productLocks) get(productID primitive.ObjectID) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.locks[productID]
	if !ok {
		m = &sync.Mutex{}
		p.locks[productID] = m
	}
	return m
}
