package accessstore_test

import (
	"errors"
	"testing"

	accessstore "github.com/coursedeck/coursedeck/internal/app/store/access"
	"github.com/coursedeck/coursedeck/internal/app/system/indexes"
	"github.com/coursedeck/coursedeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGrant_GeneratesPurchaseRef(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := accessstore.New(db)
	g, err := store.Grant(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "")
	if err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if g.PurchaseRef == "" {
		t.Error("expected a generated purchase ref")
	}

	g2, err := store.Grant(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "order-42")
	if err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if g2.PurchaseRef != "order-42" {
		t.Errorf("purchase ref: got %q, want order-42", g2.PurchaseRef)
	}
}

func TestGrant_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	store := accessstore.New(db)
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	if _, err := store.Grant(ctx, userID, productID, ""); err != nil {
		t.Fatalf("first Grant failed: %v", err)
	}
	if _, err := store.Grant(ctx, userID, productID, ""); !errors.Is(err, accessstore.ErrDuplicateGrant) {
		t.Errorf("expected ErrDuplicateGrant, got %v", err)
	}
}

func TestHasAndRevoke(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := accessstore.New(db)
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	if has, err := store.Has(ctx, userID, productID); err != nil || has {
		t.Fatalf("Has before Grant: got %v err=%v, want false", has, err)
	}

	if _, err := store.Grant(ctx, userID, productID, ""); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if has, err := store.Has(ctx, userID, productID); err != nil || !has {
		t.Fatalf("Has after Grant: got %v err=%v, want true", has, err)
	}

	deleted, err := store.Revoke(ctx, userID, productID)
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Revoke deleted: got %d, want 1", deleted)
	}
	if has, err := store.Has(ctx, userID, productID); err != nil || has {
		t.Errorf("Has after Revoke: got %v err=%v, want false", has, err)
	}
}

func TestListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := accessstore.New(db)
	userID := primitive.NewObjectID()

	if _, err := store.Grant(ctx, userID, primitive.NewObjectID(), ""); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if _, err := store.Grant(ctx, userID, primitive.NewObjectID(), ""); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if _, err := store.Grant(ctx, primitive.NewObjectID(), primitive.NewObjectID(), ""); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	grants, err := store.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(grants) != 2 {
		t.Errorf("grants: got %d, want 2", len(grants))
	}
}
