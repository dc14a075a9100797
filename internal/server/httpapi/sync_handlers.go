package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/server/syncer"
)

type syncStatusResponse struct {
	IsSyncing     bool       `json:"is_syncing"`
	LastSync      *time.Time `json:"last_sync"`
	StatusMessage string     `json:"status_message"`
	State         string     `json:"state"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (s *HTTPServer) handleSyncTrigger(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	res, err := s.sync.Trigger(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error(r.Context(), "trigger sync", "user_id", claims.UserID, "error", err)
		writeMessage(w, statusFor(err), false, "Failed to start sync")
		return
	}
	if res == syncer.AlreadyRunning {
		writeMessage(w, http.StatusOK, false, "Sync already in progress")
		return
	}
	writeMessage(w, http.StatusOK, true, "Library sync started")
}

func (s *HTTPServer) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	st := s.sync.Status(r.Context(), claims.UserID)
	writeJSON(w, http.StatusOK, syncStatusResponse{
		IsSyncing:     st.IsSyncing,
		LastSync:      st.LastSync,
		StatusMessage: st.Message,
		State:         string(st.State),
	})
}

func (s *HTTPServer) handleSyncReset(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	if err := s.sync.Reset(claims.UserID); err != nil {
		if errors.Is(err, common.ErrSyncAlreadyRunning) {
			writeMessage(w, http.StatusConflict, false, "Sync already in progress")
			return
		}
		writeMessage(w, statusFor(err), false, "Failed to reset sync status")
		return
	}
	writeMessage(w, http.StatusOK, true, "Sync status reset")
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db == nil || s.db.PingContext(r.Context()) != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: "disconnected"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "connected"})
}
