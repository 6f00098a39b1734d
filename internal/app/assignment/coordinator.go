// internal/app/assignment/coordinator.go

// Package assignment orchestrates group placement for new access grants.
//
// The coordinator wraps the pure allocator with everything stateful:
// per-product serialization, the occupancy snapshot read, the membership
// write, and failure reporting. One call per grant-creation event.
package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursedeck/coursedeck/internal/app/allocator"
	allocfailurestore "github.com/coursedeck/coursedeck/internal/app/store/allocfailures"
	membershipstore "github.com/coursedeck/coursedeck/internal/app/store/memberships"
	productstore "github.com/coursedeck/coursedeck/internal/app/store/products"
	"github.com/coursedeck/coursedeck/internal/app/store/queries/groupoccupancy"
	"github.com/coursedeck/coursedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Result is the outcome of one allocation attempt. Exhaustion and a missing
// group set are first-class outcomes, not errors: the grant stays valid and
// the condition is recorded for operator follow-up.
type Result struct {
	Placed        bool               `json:"placed"`
	AlreadyPlaced bool               `json:"already_placed,omitempty"`
	GroupID       primitive.ObjectID `json:"group_id,omitempty"`
	FailureReason string             `json:"failure_reason,omitempty"` // exhausted | no_groups
}

// Coordinator applies the allocation policy to grant events.
type Coordinator struct {
	db          *mongo.Database
	products    *productstore.Store
	memberships *membershipstore.Store
	failures    *allocfailurestore.Store
	locks       *productLocks
	log         *zap.Logger
}

// NewCoordinator wires the coordinator against the shared database handle.
func NewCoordinator(db *mongo.Database, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		db:          db,
		products:    productstore.New(db),
		memberships: membershipstore.New(db),
		failures:    allocfailurestore.New(db),
		locks:       newProductLocks(),
		log:         logger,
	}
}

// OnAccessGranted places the user into exactly one of the product's groups,
// or records why it could not. Invoked once per new (user, product) access
// grant; calling it again for a user who is already placed is a no-op.
//
// A returned error means a persistence failure: the snapshot read or the
// membership write did not complete. The caller may retry the allocation;
// the underlying access grant must never be revoked because of it.
func (c *Coordinator) OnAccessGranted(ctx context.Context, productID, userID primitive.ObjectID) (Result, error) {
	lock := c.locks.get(productID)
	lock.Lock()
	defer lock.Unlock()

	// Idempotency: a placed user stays where they are.
	existing, found, err := c.memberships.FindForProduct(ctx, productID, userID)
	if err != nil {
		return Result{}, fmt.Errorf("check existing membership: %w", err)
	}
	if found {
		return Result{Placed: true, AlreadyPlaced: true, GroupID: existing.GroupID}, nil
	}

	snap, err := c.loadSnapshot(ctx, productID)
	if err != nil {
		return Result{}, err
	}

	groupID, err := allocator.Decide(snap)
	switch {
	case errors.Is(err, allocator.ErrExhausted):
		return c.reportFailure(ctx, productID, userID, models.FailureExhausted)
	case errors.Is(err, allocator.ErrNoGroups):
		// Product misconfiguration; louder than plain exhaustion.
		c.log.Error("allocation impossible: product has no groups",
			zap.String("product_id", productID.Hex()),
			zap.String("user_id", userID.Hex()))
		return c.reportFailure(ctx, productID, userID, models.FailureNoGroups)
	case err != nil:
		return Result{}, fmt.Errorf("allocation decision: %w", err)
	}

	if err := c.memberships.Add(ctx, groupID, userID, productID); err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			// Another instance won the race; the unique index kept the
			// invariant. Report where the user actually landed.
			placed, found, ferr := c.memberships.FindForProduct(ctx, productID, userID)
			if ferr == nil && found {
				return Result{Placed: true, AlreadyPlaced: true, GroupID: placed.GroupID}, nil
			}
			return Result{}, fmt.Errorf("commit membership: %w", err)
		}
		return Result{}, fmt.Errorf("commit membership: %w", err)
	}

	// A successful placement closes any failure recorded by earlier
	// attempts (e.g. a retry after the operator added a group).
	if _, err := c.failures.ResolveFor(ctx, productID, userID); err != nil {
		c.log.Warn("failed to resolve allocation failure records",
			zap.String("product_id", productID.Hex()),
			zap.String("user_id", userID.Hex()),
			zap.Error(err))
	}

	c.log.Info("user placed into group",
		zap.String("product_id", productID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.String("group_id", groupID.Hex()))

	return Result{Placed: true, GroupID: groupID}, nil
}

// loadSnapshot captures the product's capacity and per-group occupancy as
// one read-only view for a single decision.
func (c *Coordinator) loadSnapshot(ctx context.Context, productID primitive.ObjectID) (allocator.Snapshot, error) {
	product, err := c.products.GetByID(ctx, productID)
	if err != nil {
		return allocator.Snapshot{}, fmt.Errorf("load product: %w", err)
	}

	counts, err := groupoccupancy.ForProduct(ctx, c.db, productID)
	if err != nil {
		return allocator.Snapshot{}, fmt.Errorf("load occupancy snapshot: %w", err)
	}

	snap := allocator.Snapshot{
		ProductID: productID,
		Capacity:  product.MaxUsers,
		Groups:    make([]allocator.GroupLoad, 0, len(counts)),
	}
	for _, gc := range counts {
		snap.Groups = append(snap.Groups, allocator.GroupLoad{ID: gc.ID, Occupancy: gc.Occupancy})
	}
	return snap, nil
}

// reportFailure records the unplaced grant and surfaces it for operator
// follow-up. The grant itself stays valid: zero membership writes happen
// on this path.
func (c *Coordinator) reportFailure(ctx context.Context, productID, userID primitive.ObjectID, reason string) (Result, error) {
	c.log.Warn("could not place user into any group",
		zap.String("product_id", productID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.String("reason", reason))

	if err := c.failures.Record(ctx, productID, userID, reason); err != nil {
		// The decision outcome stands; only the bookkeeping write failed.
		return Result{FailureReason: reason}, fmt.Errorf("record allocation failure: %w", err)
	}
	return Result{FailureReason: reason}, nil
}
