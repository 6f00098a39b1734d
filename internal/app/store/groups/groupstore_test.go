package groupstore_test

import (
	"errors"
	"testing"

	groupstore "github.com/coursedeck/coursedeck/internal/app/store/groups"
	"github.com/coursedeck/coursedeck/internal/app/system/indexes"
	"github.com/coursedeck/coursedeck/internal/domain/models"
	"github.com/coursedeck/coursedeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_DuplicateNameWithinProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	store := groupstore.New(db)
	productID := primitive.NewObjectID()

	if _, err := store.Create(ctx, models.Group{ProductID: productID, Name: "Cohort A"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	// Folded name collides regardless of case.
	_, err := store.Create(ctx, models.Group{ProductID: productID, Name: "COHORT a"})
	if !errors.Is(err, groupstore.ErrDuplicateGroupName) {
		t.Errorf("expected ErrDuplicateGroupName, got %v", err)
	}

	// The same name in a different product is fine.
	if _, err := store.Create(ctx, models.Group{ProductID: primitive.NewObjectID(), Name: "Cohort A"}); err != nil {
		t.Errorf("same name in another product: %v", err)
	}
}

func TestListByProduct_AscendingIDOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := groupstore.New(db)
	productID := primitive.NewObjectID()

	g1, err := store.Create(ctx, models.Group{ProductID: productID, Name: "Zulu"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	g2, err := store.Create(ctx, models.Group{ProductID: productID, Name: "Alpha"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	groups, err := store.ListByProduct(ctx, productID)
	if err != nil {
		t.Fatalf("ListByProduct failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups: got %d, want 2", len(groups))
	}
	// Creation order, not name order.
	if groups[0].ID != g1.ID || groups[1].ID != g2.ID {
		t.Errorf("ordering: got [%s %s], want [%s %s]",
			groups[0].ID.Hex(), groups[1].ID.Hex(), g1.ID.Hex(), g2.ID.Hex())
	}
}

func TestDelete_MissingGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := groupstore.New(db)
	deleted, err := store.Delete(ctx, db, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted: got %d, want 0", deleted)
	}
}
