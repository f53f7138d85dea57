package http

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/trellis-labs/authgate/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks store connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backing store is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleSignup godoc
// @Summary      Create account
// @Description  Register a new account. The response never contains the password in any form.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SignupRequest  true  "Account details"
// @Success      201      {object}  domain.UserSummary
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      409      {object}  ErrorResponse  "Username or email already registered"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/signup [post]
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authService.Signup(r.Context(), req)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "username, email, and password are required")
		case domain.ErrAlreadyExists:
			writeError(w, http.StatusConflict, "username or email already registered")
		default:
			writeError(w, http.StatusInternalServerError, "signup failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// handleLogin godoc
// @Summary      User login
// @Description  Authenticate with username and password to receive an access/refresh token pair
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.TokenPair
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Wrong password"
// @Failure      404      {object}  ErrorResponse  "Account not found"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.IPAddress = clientIP(r)
	req.Device = r.UserAgent()

	pair, err := s.authService.Login(r.Context(), req)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "username and password are required")
		case domain.ErrNotFound:
			writeError(w, http.StatusNotFound, "account not found")
		case domain.ErrUnauthorized:
			writeError(w, http.StatusUnauthorized, "wrong password")
		default:
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// handleRefresh godoc
// @Summary      Refresh tokens
// @Description  Exchange a valid refresh token for a new pair. The presented token is invalidated.
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.TokenPair
// @Failure      401  {object}  ErrorResponse  "Missing or invalid refresh token"
// @Failure      403  {object}  ErrorResponse  "Access denied"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /auth/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	claims := GetTokenClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	pair, err := s.authService.Refresh(r.Context(), domain.RefreshRequest{
		Username:     claims.Username,
		SessionID:    claims.SessionID,
		RefreshToken: claims.RefreshToken,
	})
	if err != nil {
		if err == domain.ErrAccessDenied {
			writeError(w, http.StatusForbidden, "access denied")
		} else {
			writeError(w, http.StatusInternalServerError, "refresh failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// handleLogout godoc
// @Summary      Logout
// @Description  Delete the current session. The refresh token stops working immediately.
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse  "Missing or invalid access token"
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := GetTokenClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	// Best-effort: a failed delete is not surfaced to the client
	if err := s.authService.Logout(r.Context(), claims.SessionID); err != nil {
		s.logger.Warn("logout delete failed", "session_id", claims.SessionID, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{})
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// clientIP extracts the client address, preferring X-Forwarded-For when the
// service runs behind a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
