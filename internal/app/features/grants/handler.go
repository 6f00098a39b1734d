// internal/app/features/grants/handler.go

// Package grants is the admin surface for access grants and their
// allocation outcomes: granting product access (which triggers group
// placement), reviewing unplaced grants, and retrying them.
package grants

import (
	"context"
	"errors"
	"net/http"

	"github.com/coursedeck/coursedeck/internal/app/assignment"
	accessstore "github.com/coursedeck/coursedeck/internal/app/store/access"
	allocfailurestore "github.com/coursedeck/coursedeck/internal/app/store/allocfailures"
	productstore "github.com/coursedeck/coursedeck/internal/app/store/products"
	userstore "github.com/coursedeck/coursedeck/internal/app/store/users"
	"github.com/coursedeck/coursedeck/internal/app/system/httpjson"
	"github.com/coursedeck/coursedeck/internal/app/system/timeouts"
	"github.com/coursedeck/coursedeck/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Products    *productstore.Store
	Users       *userstore.Store
	Access      *accessstore.Store
	Failures    *allocfailurestore.Store
	Coordinator *assignment.Coordinator
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, coord *assignment.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{
		Products:    productstore.New(db),
		Users:       userstore.New(db),
		Access:      accessstore.New(db),
		Failures:    allocfailurestore.New(db),
		Coordinator: coord,
		Log:         logger,
	}
}

// HandleCreate handles POST /api/admin/products/{productID}/grants.
//
// This is the purchase-completion event: record the grant, then run group
// placement exactly once for the fresh grant. A duplicate grant is a 409
// and does not re-fire allocation. An allocation that ends in exhaustion or
// no-groups is still a 201: the grant stands, and the failure is recorded
// for operator follow-up.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "productID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req createGrantRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "product not found")
			return
		}
		h.Log.Error("grants: load product failed", zap.Error(err), zap.String("product_id", productID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}
	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("grants: load user failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	grant, err := h.Access.Grant(ctx, userID, productID, req.PurchaseRef)
	switch {
	case errors.Is(err, accessstore.ErrDuplicateGrant):
		httpjson.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.Log.Error("grants: create failed", zap.Error(err),
			zap.String("product_id", productID.Hex()),
			zap.String("user_id", userID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	result, err := h.Coordinator.OnAccessGranted(ctx, productID, userID)
	if err != nil {
		// The grant is already committed and must not be rolled back.
		// Report the grant with an empty allocation; the admin can retry
		// placement from the failures view.
		h.Log.Error("grants: allocation errored after grant", zap.Error(err),
			zap.String("product_id", productID.Hex()),
			zap.String("user_id", userID.Hex()))
	}

	httpjson.Write(w, http.StatusCreated, grantResponse{Grant: grant, Allocation: result})
}

// HandleListFailures handles GET /api/admin/allocation-failures: open
// failures, newest first.
func (h *Handler) HandleListFailures(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	failures, err := h.Failures.ListUnresolved(ctx)
	if err != nil {
		h.Log.Error("grants: list failures failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}
	if failures == nil {
		failures = []models.AllocationFailure{}
	}
	httpjson.Write(w, http.StatusOK, failures)
}

// HandleRetryFailure handles POST /api/admin/allocation-failures/{failureID}/retry.
//
// Used after the operator has made room (new group, raised capacity). A
// successful placement resolves the failure record; an attempt that fails
// again leaves it open.
func (h *Handler) HandleRetryFailure(w http.ResponseWriter, r *http.Request) {
	failureID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "failureID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid failure id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	failure, err := h.Failures.GetByID(ctx, failureID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		httpjson.Error(w, http.StatusNotFound, "allocation failure not found")
		return
	case err != nil:
		h.Log.Error("grants: load failure failed", zap.Error(err), zap.String("failure_id", failureID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}
	if failure.Resolved {
		httpjson.Error(w, http.StatusConflict, "allocation failure is already resolved")
		return
	}

	result, err := h.Coordinator.OnAccessGranted(ctx, failure.ProductID, failure.UserID)
	if err != nil {
		h.Log.Error("grants: retry allocation errored", zap.Error(err), zap.String("failure_id", failureID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	httpjson.Write(w, http.StatusOK, retryResponse{
		FailureID:  failureID.Hex(),
		Allocation: result,
	})
}
