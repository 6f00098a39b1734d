package assignment

import (
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProductLocks_SameProductSameMutex(t *testing.T) {
	locks := newProductLocks()
	id := primitive.NewObjectID()

	if locks.get(id) != locks.get(id) {
		t.Fatal("expected the same mutex for repeated lookups of one product")
	}
}

func TestProductLocks_DifferentProductsDifferentMutexes(t *testing.T) {
	locks := newProductLocks()

	a := locks.get(primitive.NewObjectID())
	b := locks.get(primitive.NewObjectID())
	if a == b {
		t.Fatal("expected distinct mutexes for distinct products")
	}
}

func TestProductLocks_ConcurrentGetIsSafe(t *testing.T) {
	locks := newProductLocks()
	id := primitive.NewObjectID()

	var wg sync.WaitGroup
	muxes := make([]*sync.Mutex, 20)
	for i := range muxes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			muxes[i] = locks.get(id)
		}(i)
	}
	wg.Wait()

	for i, m := range muxes {
		if m != muxes[0] {
			t.Fatalf("goroutine %d got a different mutex", i)
		}
	}
}
