package groupoccupancy_test

import (
	"testing"

	"github.com/coursedeck/coursedeck/internal/app/store/queries/groupoccupancy"
	"github.com/coursedeck/coursedeck/internal/testutil"
)

func TestForProduct_CountsAndOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	product := fixtures.CreateProduct(ctx, "Course", 5)
	g1 := fixtures.CreateGroup(ctx, product.ID, "Cohort A")
	g2 := fixtures.CreateGroup(ctx, product.ID, "Cohort B")
	g3 := fixtures.CreateGroup(ctx, product.ID, "Cohort C")
	fixtures.FillGroup(ctx, g1.ID, product.ID, 2)
	fixtures.FillGroup(ctx, g3.ID, product.ID, 4)

	// Members of another product's groups never leak into the counts.
	other := fixtures.CreateProduct(ctx, "Other", 5)
	og := fixtures.CreateGroup(ctx, other.ID, "Cohort A")
	fixtures.FillGroup(ctx, og.ID, other.ID, 3)

	counts, err := groupoccupancy.ForProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("ForProduct failed: %v", err)
	}
	if len(counts) != 3 {
		t.Fatalf("groups: got %d, want 3", len(counts))
	}

	// Ascending _id order, i.e. creation order of the fixtures.
	wantIDs := []string{g1.ID.Hex(), g2.ID.Hex(), g3.ID.Hex()}
	wantOcc := []int{2, 0, 4}
	for i, gc := range counts {
		if gc.ID.Hex() != wantIDs[i] {
			t.Errorf("position %d: got group %s, want %s", i, gc.ID.Hex(), wantIDs[i])
		}
		if gc.Occupancy != wantOcc[i] {
			t.Errorf("group %s occupancy: got %d, want %d", gc.ID.Hex(), gc.Occupancy, wantOcc[i])
		}
	}
}

func TestForProduct_NoGroups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	product := fixtures.CreateProduct(ctx, "Empty", 5)

	counts, err := groupoccupancy.ForProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("ForProduct failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("groups: got %d, want 0", len(counts))
	}
}
