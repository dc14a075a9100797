package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/shelfsync/internal/server/services"
)

type loginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Marketplace string `json:"marketplace"`
}

type verifyOTPRequest struct {
	SessionID string `json:"session_id"`
	OTPCode   string `json:"otp_code"`
}

type userInfo struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Marketplace string `json:"marketplace"`
}

type loginResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	RequiresOTP bool      `json:"requires_otp"`
	SessionID   string    `json:"session_id,omitempty"`
	User        *userInfo `json:"user,omitempty"`
}

type meResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *userInfo `json:"user,omitempty"`
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	res := s.auth.Login(r.Context(), req.Username, req.Password, req.Marketplace)
	s.writeLoginResult(w, res)
}

func (s *HTTPServer) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		writeMessage(w, http.StatusBadRequest, false, "Invalid or expired session")
		return
	}

	res := s.auth.VerifyOTP(r.Context(), req.SessionID, req.OTPCode)
	s.writeLoginResult(w, res)
}

func (s *HTTPServer) writeLoginResult(w http.ResponseWriter, res *services.LoginResult) {
	switch res.Outcome {
	case services.OutcomeSuccess:
		s.setSessionCookie(w, res.Token)
		writeJSON(w, http.StatusOK, loginResponse{
			Success: true,
			Message: res.Message,
			User: &userInfo{
				UserID:      res.User.ID,
				Username:    res.User.ProviderUserID,
				Marketplace: res.Marketplace,
			},
		})
	case services.OutcomeChallengeRequired:
		writeJSON(w, http.StatusOK, loginResponse{
			Success:     false,
			Message:     res.Message,
			RequiresOTP: true,
			SessionID:   res.SessionID,
		})
	default:
		writeJSON(w, statusFor(res.Reason), loginResponse{Success: false, Message: res.Message})
	}
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.tokens.Verify(sessionToken(r))
	if !ok {
		writeJSON(w, http.StatusOK, meResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		Authenticated: true,
		User: &userInfo{
			UserID:      claims.UserID,
			Username:    claims.Username,
			Marketplace: claims.Marketplace,
		},
	})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, true, "Logged out successfully")
}

func (s *HTTPServer) handleTestAccess(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	ok, msg := s.auth.TestAccess(r.Context(), claims.UserID)
	writeMessage(w, http.StatusOK, ok, msg)
}
