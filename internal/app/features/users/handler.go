// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/coursedeck/coursedeck/internal/app/store/users"
	"github.com/coursedeck/coursedeck/internal/app/system/authutil"
	"github.com/coursedeck/coursedeck/internal/app/system/httpjson"
	"github.com/coursedeck/coursedeck/internal/app/system/timeouts"
	"github.com/coursedeck/coursedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Users: userstore.New(db),
		Log:   logger,
	}
}

type createUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleCreate handles POST /api/admin/users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = "student"
	}

	switch {
	case req.FullName == "":
		httpjson.Error(w, http.StatusBadRequest, "full_name is required")
		return
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		httpjson.Error(w, http.StatusBadRequest, "a valid email is required")
		return
	case role != "admin" && role != "student":
		httpjson.Error(w, http.StatusBadRequest, "role must be admin or student")
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("users: hash password failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		httpjson.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.Log.Error("users: create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	h.Log.Info("user created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", u.Role))

	httpjson.Write(w, http.StatusCreated, u)
}
