// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/coursedeck/coursedeck/internal/app/system/auth"
	"github.com/coursedeck/coursedeck/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type Handler struct {
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sessionMgr, Log: logger}
}

// HandleLogout handles POST /logout. Clearing an already-empty session is
// fine; the endpoint is idempotent.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Log.Info("user logged out", zap.String("user_id", u.ID))
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: clear session failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "unable to clear session")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"logged_out": true})
}
