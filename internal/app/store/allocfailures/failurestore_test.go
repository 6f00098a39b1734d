package allocfailurestore_test

import (
	"testing"

	allocfailurestore "github.com/coursedeck/coursedeck/internal/app/store/allocfailures"
	"github.com/coursedeck/coursedeck/internal/domain/models"
	"github.com/coursedeck/coursedeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecord_UpsertsInsteadOfPilingUp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := allocfailurestore.New(db)
	productID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if err := store.Record(ctx, productID, userID, models.FailureNoGroups); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	// A later attempt against the same grant updates the reason in place.
	if err := store.Record(ctx, productID, userID, models.FailureExhausted); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	n, err := db.Collection("allocation_failures").CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("failure records: got %d, want 1", n)
	}

	var f models.AllocationFailure
	if err := db.Collection("allocation_failures").FindOne(ctx, bson.M{"user_id": userID}).Decode(&f); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if f.Reason != models.FailureExhausted {
		t.Errorf("reason: got %q, want %q", f.Reason, models.FailureExhausted)
	}
}

func TestResolveFor_ClosesOpenRecords(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := allocfailurestore.New(db)
	productID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if err := store.Record(ctx, productID, userID, models.FailureExhausted); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	closed, err := store.ResolveFor(ctx, productID, userID)
	if err != nil {
		t.Fatalf("ResolveFor failed: %v", err)
	}
	if closed != 1 {
		t.Errorf("closed: got %d, want 1", closed)
	}

	var f models.AllocationFailure
	if err := db.Collection("allocation_failures").FindOne(ctx, bson.M{"user_id": userID}).Decode(&f); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if !f.Resolved || f.ResolvedAt == nil {
		t.Errorf("record not closed: %+v", f)
	}

	// Resolving again is a no-op.
	closed, err = store.ResolveFor(ctx, productID, userID)
	if err != nil {
		t.Fatalf("second ResolveFor failed: %v", err)
	}
	if closed != 0 {
		t.Errorf("second resolve closed %d records, want 0", closed)
	}
}

func TestListUnresolved_ExcludesResolved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := allocfailurestore.New(db)
	productID := primitive.NewObjectID()
	openUser := primitive.NewObjectID()
	closedUser := primitive.NewObjectID()

	if err := store.Record(ctx, productID, openUser, models.FailureExhausted); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, productID, closedUser, models.FailureExhausted); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := store.ResolveFor(ctx, productID, closedUser); err != nil {
		t.Fatalf("ResolveFor failed: %v", err)
	}

	open, err := store.ListUnresolved(ctx)
	if err != nil {
		t.Fatalf("ListUnresolved failed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("open failures: got %d, want 1", len(open))
	}
	if open[0].UserID != openUser {
		t.Errorf("open failure user: got %s, want %s", open[0].UserID.Hex(), openUser.Hex())
	}
}
