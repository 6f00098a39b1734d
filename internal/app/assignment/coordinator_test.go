package assignment_test

import (
	"sync"
	"testing"

	"github.com/coursedeck/coursedeck/internal/app/assignment"
	"github.com/coursedeck/coursedeck/internal/app/system/indexes"
	"github.com/coursedeck/coursedeck/internal/domain/models"
	"github.com/coursedeck/coursedeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func membershipCount(t *testing.T, f *testutil.Fixtures, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := f.DB().Collection("group_memberships").CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	return n
}

func TestOnAccessGranted_PlacesIntoBusiestOpenGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	coord := assignment.NewCoordinator(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	product := fixtures.CreateProduct(ctx, "Intro to Go", 3)
	g1 := fixtures.CreateGroup(ctx, product.ID, "Cohort A")
	g2 := fixtures.CreateGroup(ctx, product.ID, "Cohort B")
	g3 := fixtures.CreateGroup(ctx, product.ID, "Cohort C")
	fixtures.FillGroup(ctx, g1.ID, product.ID, 3) // full
	fixtures.FillGroup(ctx, g2.ID, product.ID, 1) // busiest open
	_ = g3                                        // empty

	user := fixtures.CreateUser(ctx, "Ada Lovelace", "ada@example.com", "student")

	res, err := coord.OnAccessGranted(ctx, product.ID, user.ID)
	if err != nil {
		t.Fatalf("OnAccessGranted failed: %v", err)
	}
	if !res.Placed {
		t.Fatalf("expected placement, got %+v", res)
	}
	if res.GroupID != g2.ID {
		t.Errorf("placed into %s, want %s (busiest non-full group)", res.GroupID.Hex(), g2.ID.Hex())
	}
	if n := membershipCount(t, fixtures, bson.M{"user_id": user.ID}); n != 1 {
		t.Errorf("memberships for user: got %d, want 1", n)
	}
}

func TestOnAccessGranted_Exhausted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	coord := assignment.NewCoordinator(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	product := fixtures.CreateProduct(ctx, "Full Course", 2)
	g1 := fixtures.CreateGroup(ctx, product.ID, "Cohort A")
	g2 := fixtures.CreateGroup(ctx, product.ID, "Cohort B")
	fixtures.FillGroup(ctx, g1.ID, product.ID, 2)
	fixtures.FillGroup(ctx, g2.ID, product.ID, 2)

	user := fixtures.CreateUser(ctx, "Grace Hopper", "grace@example.com", "student")

	res, err := coord.OnAccessGranted(ctx, product.ID, user.ID)
	if err != nil {
		t.Fatalf("OnAccessGranted failed: %v", err)
	}
	if res.Placed {
		t.Fatalf("expected no placement, got %+v", res)
	}
	if res.FailureReason != models.FailureExhausted {
		t.Errorf("failure reason: got %q, want %q", res.FailureReason, models.FailureExhausted)
	}
	if n := membershipCount(t, fixtures, bson.M{"user_id": user.ID}); n != 0 {
		t.Errorf("memberships for user: got %d, want 0", n)
	}

	// The no-drop invariant: the outcome is recorded for the operator.
	var failure models.AllocationFailure
	err = db.Collection("allocation_failures").FindOne(ctx, bson.M{
		"product_id": product.ID,
		"user_id":    user.ID,
		"resolved":   false,
	}).Decode(&failure)
	if err != nil {
		t.Fatalf("expected an unresolved allocation failure record: %v", err)
	}
	if failure.Reason != models.FailureExhausted {
		t.Errorf("recorded reason: got %q, want %q", failure.Reason, models.FailureExhausted)
	}
}

func TestOnAccessGranted_NoGroups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	coord := assignment.NewCoordinator(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	product := fixtures.CreateProduct(ctx, "Misconfigured", 5)
	user := fixtures.CreateUser(ctx, "Alan Turing", "alan@example.com", "student")

	res, err := coord.OnAccessGranted(ctx, product.ID, user.ID)
	if err != nil {
		t.Fatalf("OnAccessGranted failed: %v", err)
	}
	if res.Placed {
		t.Fatalf("expected no placement, got %+v", res)
	}
	if res.FailureReason != models.FailureNoGroups {
		t.Errorf("failure reason: got %q, want %q", res.FailureReason, models.FailureNoGroups)
	}
}

func TestOnAccessGranted_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	coord := assignment.NewCoordinator(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	product := fixtures.CreateProduct(ctx, "Repeat Course", 3)
	group := fixtures.CreateGroup(ctx, product.ID, "Cohort A")
	user := fixtures.CreateUser(ctx, "Barbara Liskov", "barbara@example.com", "student")

	first, err := coord.OnAccessGranted(ctx, product.ID, user.ID)
	if err != nil {
		t.Fatalf("first OnAccessGranted failed: %v", err)
	}
	if !first.Placed || first.GroupID != group.ID {
		t.Fatalf("first call: got %+v, want placement into %s", first, group.ID.Hex())
	}

	second, err := coord.OnAccessGranted(ctx, product.ID, user.ID)
	if err != nil {
		t.Fatalf("second OnAccessGranted failed: %v", err)
	}
	if !second.Placed || !second.AlreadyPlaced {
		t.Fatalf("second call: got %+v, want already-placed", second)
	}
	if second.GroupID != group.ID {
		t.Errorf("second call group: got %s, want %s", second.GroupID.Hex(), group.ID.Hex())
	}

	if n := membershipCount(t, fixtures, bson.M{"user_id": user.ID}); n != 1 {
		t.Errorf("memberships for user: got %d, want 1", n)
	}
}

func TestOnAccessGranted_ConcurrentGrantsNeverOverfill(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	coord := assignment.NewCoordinator(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Indexes matter here: the unique constraints are part of the contract
	// under concurrency.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// One group with a single remaining seat, two simultaneous grants:
	// exactly one placement, one exhaustion.
	product := fixtures.CreateProduct(ctx, "Race Course", 2)
	group := fixtures.CreateGroup(ctx, product.ID, "Cohort A")
	fixtures.FillGroup(ctx, group.ID, product.ID, 1)

	u1 := fixtures.CreateUser(ctx, "Racer One", "r1@example.com", "student")
	u2 := fixtures.CreateUser(ctx, "Racer Two", "r2@example.com", "student")

	var wg sync.WaitGroup
	results := make([]assignment.Result, 2)
	errs := make([]error, 2)
	for i, uid := range []primitive.ObjectID{u1.ID, u2.ID} {
		wg.Add(1)
		go func(i int, uid primitive.ObjectID) {
			defer wg.Done()
			ctx, cancel := testutil.TestContext()
			defer cancel()
			results[i], errs[i] = coord.OnAccessGranted(ctx, product.ID, uid)
		}(i, uid)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("grant %d failed: %v", i, err)
		}
	}

	placed, exhausted := 0, 0
	for _, res := range results {
		switch {
		case res.Placed:
			placed++
		case res.FailureReason == models.FailureExhausted:
			exhausted++
		}
	}
	if placed != 1 || exhausted != 1 {
		t.Fatalf("got %d placements and %d exhaustions, want exactly 1 and 1 (results: %+v)", placed, exhausted, results)
	}

	// The capacity invariant held.
	if n := membershipCount(t, fixtures, bson.M{"group_id": group.ID}); n != 2 {
		t.Errorf("group occupancy: got %d, want 2 (capacity)", n)
	}
}

func TestOnAccessGranted_RetryAfterOperatorAddsGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	coord := assignment.NewCoordinator(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	product := fixtures.CreateProduct(ctx, "Popular Course", 1)
	g1 := fixtures.CreateGroup(ctx, product.ID, "Cohort A")
	fixtures.FillGroup(ctx, g1.ID, product.ID, 1)

	user := fixtures.CreateUser(ctx, "Late Buyer", "late@example.com", "student")

	first, err := coord.OnAccessGranted(ctx, product.ID, user.ID)
	if err != nil {
		t.Fatalf("first OnAccessGranted failed: %v", err)
	}
	if first.Placed {
		t.Fatalf("expected exhaustion, got %+v", first)
	}

	// Operator opens a new group, then retries the placement.
	g2 := fixtures.CreateGroup(ctx, product.ID, "Cohort B")

	second, err := coord.OnAccessGranted(ctx, product.ID, user.ID)
	if err != nil {
		t.Fatalf("retry OnAccessGranted failed: %v", err)
	}
	if !second.Placed || second.GroupID != g2.ID {
		t.Fatalf("retry: got %+v, want placement into %s", second, g2.ID.Hex())
	}

	// The failure record is closed.
	n, err := db.Collection("allocation_failures").CountDocuments(ctx, bson.M{
		"product_id": product.ID,
		"user_id":    user.ID,
		"resolved":   false,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 0 {
		t.Errorf("unresolved failures after successful retry: got %d, want 0", n)
	}
}
