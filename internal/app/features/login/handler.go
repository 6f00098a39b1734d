// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/coursedeck/coursedeck/internal/app/store/users"
	"github.com/coursedeck/coursedeck/internal/app/system/auth"
	"github.com/coursedeck/coursedeck/internal/app/system/authutil"
	"github.com/coursedeck/coursedeck/internal/app/system/httpjson"
	"github.com/coursedeck/coursedeck/internal/app/system/status"
	"github.com/coursedeck/coursedeck/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// HandleLogin handles POST /login.
//
// Credential failures always return the same 401 body so the response does
// not reveal whether the email exists.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	case err != nil:
		h.Log.Error("login: user lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	if !authutil.CheckPassword(req.Password, u.PasswordHash) {
		h.Log.Warn("login: wrong password", zap.String("user_id", u.ID.Hex()))
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if u.Status == status.Disabled {
		httpjson.Error(w, http.StatusForbidden, "account is disabled")
		return
	}

	sessionUser := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		h.Log.Error("login: save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "unable to create session")
		return
	}

	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))

	httpjson.Write(w, http.StatusOK, loginResponse{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	})
}
