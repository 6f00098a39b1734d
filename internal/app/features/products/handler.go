// internal/app/features/products/handler.go
package products

import (
	"context"
	"errors"
	"net/http"
	"strings"

	accessstore "github.com/coursedeck/coursedeck/internal/app/store/access"
	lessonstore "github.com/coursedeck/coursedeck/internal/app/store/lessons"
	productstore "github.com/coursedeck/coursedeck/internal/app/store/products"
	"github.com/coursedeck/coursedeck/internal/app/store/queries/productqueries"
	"github.com/coursedeck/coursedeck/internal/app/system/auth"
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
	Lessons  *lessonstore.Store
	Access   *accessstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Products: productstore.New(db),
		Lessons:  lessonstore.New(db),
		Access:   accessstore.New(db),
		Log:      logger,
	}
}

// HandleList handles GET /api/products: the catalog with lesson counts.
// Any signed-in user can browse the catalog; only detail is gated.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := productqueries.ListWithLessonCounts(ctx, h.DB)
	if err != nil {
		h.Log.Error("products: catalog query failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}
	if items == nil {
		items = []productqueries.ProductListItem{}
	}
	httpjson.Write(w, http.StatusOK, items)
}

// HandleDetail handles GET /api/products/{productID}.
//
// Detail (including lesson video URLs) requires an access grant for the
// product. Admins see every product.
func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "productID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
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
		h.Log.Error("products: load failed", zap.Error(err), zap.String("product_id", productID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	if !strings.EqualFold(u.Role, "admin") {
		userID, ok := auth.CurrentUserObjectID(r)
		if !ok {
			httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		has, err := h.Access.Has(ctx, userID, productID)
		if err != nil {
			h.Log.Error("products: access check failed", zap.Error(err), zap.String("product_id", productID.Hex()))
			httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
			return
		}
		if !has {
			httpjson.Error(w, http.StatusForbidden, "you do not have access to this product")
			return
		}
	}

	lessons, err := h.Lessons.ListByProduct(ctx, productID)
	if err != nil {
		h.Log.Error("products: list lessons failed", zap.Error(err), zap.String("product_id", productID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}

	httpjson.Write(w, http.StatusOK, productDetail{Product: product, Lessons: lessons})
}

// HandleCreate handles POST /api/admin/products.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Name == "":
		httpjson.Error(w, http.StatusBadRequest, "name is required")
		return
	case req.MaxUsers < 1:
		httpjson.Error(w, http.StatusBadRequest, "max_users must be at least 1")
		return
	case req.MinUsers < 0 || req.MinUsers > req.MaxUsers:
		httpjson.Error(w, http.StatusBadRequest, "min_users must be between 0 and max_users")
		return
	case req.PriceCents < 0:
		httpjson.Error(w, http.StatusBadRequest, "price_cents must not be negative")
		return
	}

	authorID, ok := auth.CurrentUserObjectID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	product, err := h.Products.Create(ctx, models.Product{
		AuthorID:    authorID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		PriceCents:  req.PriceCents,
		MinUsers:    req.MinUsers,
		MaxUsers:    req.MaxUsers,
	})
	if err != nil {
		h.Log.Error("products: create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	h.Log.Info("product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("author_id", authorID.Hex()),
		zap.Int("max_users", product.MaxUsers))

	httpjson.Write(w, http.StatusCreated, product)
}

// HandleCreateLesson handles POST /api/admin/products/{productID}/lessons.
func (h *Handler) HandleCreateLesson(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "productID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req createLessonRequest
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
		h.Log.Error("products: load failed", zap.Error(err), zap.String("product_id", productID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	lesson, err := h.Lessons.Create(ctx, models.Lesson{
		ProductID: productID,
		Name:      req.Name,
		VideoURL:  req.VideoURL,
	})
	if err != nil {
		h.Log.Error("products: create lesson failed", zap.Error(err), zap.String("product_id", productID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	httpjson.Write(w, http.StatusCreated, lesson)
}
