// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"strings"

	groupstore "github.com/coursedeck/coursedeck/internal/app/store/groups"
	productstore "github.com/coursedeck/coursedeck/internal/app/store/products"
	"github.com/coursedeck/coursedeck/internal/app/store/queries/groupoccupancy"
	"github.com/coursedeck/coursedeck/internal/app/system/httpjson"
	"github.com/coursedeck/coursedeck/internal/app/system/timeouts"
	"github.com/coursedeck/coursedeck/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Products *productstore.Store
	Groups   *groupstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Products: productstore.New(db),
		Groups:   groupstore.New(db),
		Log:      logger,
	}
}

// HandleCreate handles POST /api/admin/products/{productID}/groups.
//
// New groups start empty; they become placement candidates on the next
// allocation (including operator retries of recorded failures).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "productID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req createGroupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpjson.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "product not found")
			return
		}
		h.Log.Error("groups: load product failed", zap.Error(err), zap.String("product_id", productID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	group, err := h.Groups.Create(ctx, models.Group{ProductID: productID, Name: req.Name})
	switch {
	case errors.Is(err, groupstore.ErrDuplicateGroupName):
		httpjson.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.Log.Error("groups: create failed", zap.Error(err), zap.String("product_id", productID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	h.Log.Info("group created",
		zap.String("group_id", group.ID.Hex()),
		zap.String("product_id", productID.Hex()))

	httpjson.Write(w, http.StatusCreated, group)
}

// HandleList handles GET /api/admin/products/{productID}/groups: each group
// with its current occupancy against the product's capacity.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "productID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	product, err := h.Products.GetByID(ctx, productID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		httpjson.Error(w, http.StatusNotFound, "product not found")
		return
	case err != nil:
		h.Log.Error("groups: load product failed", zap.Error(err), zap.String("product_id", productID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	counts, err := groupoccupancy.ForProduct(ctx, h.DB, productID)
	if err != nil {
		h.Log.Error("groups: occupancy query failed", zap.Error(err), zap.String("product_id", productID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	items := make([]groupListItem, 0, len(counts))
	for _, gc := range counts {
		items = append(items, groupListItem{
			ID:        gc.ID,
			Name:      gc.Name,
			Occupancy: gc.Occupancy,
			Capacity:  product.MaxUsers,
			Full:      gc.Occupancy >= product.MaxUsers,
		})
	}
	httpjson.Write(w, http.StatusOK, items)
}

// HandleDelete handles DELETE /api/admin/groups/{groupID}.
//
// Members of a deleted group keep their access grants but lose their
// placement; re-placing them is an operator action via the failure retry
// endpoint or a fresh grant event.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	deleted, err := h.Groups.Delete(ctx, h.DB, groupID)
	if err != nil {
		h.Log.Error("groups: delete failed", zap.Error(err), zap.String("group_id", groupID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}
	if deleted == 0 {
		httpjson.Error(w, http.StatusNotFound, "group not found")
		return
	}

	h.Log.Info("group deleted", zap.String("group_id", groupID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
