package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/bankjademk11/qwen-odg/internal/auth"
	"github.com/bankjademk11/qwen-odg/internal/localstore"
	"github.com/bankjademk11/qwen-odg/internal/model"
	"github.com/bankjademk11/qwen-odg/internal/store"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	DB        *sql.DB
	Local     *sql.DB
	JWTSecret string
	TokenTTL  time.Duration
}

type loginRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    *model.User `json:"user,omitempty"`
	Token   string      `json:"token,omitempty"`
}

func loginFailure(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, loginResponse{Success: false, Message: message})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		loginFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" || req.Password == "" {
		loginFailure(w, http.StatusBadRequest, "code and password are required")
		return
	}

	user, err := store.GetUserByCode(r.Context(), h.DB, req.Code)
	if err != nil {
		slog.Error("login lookup failed", "error", err, "request_id", RequestIDFrom(r.Context()))
		loginFailure(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		slog.Warn("login failed", "code", req.Code, "remote", r.RemoteAddr)
		loginFailure(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user, h.TokenTTL)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		loginFailure(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("user logged in", "code", user.Code, "warehouse", user.WhCode)
	jsonResponse(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		User:    user,
		Token:   token,
	})
}

// Logout handles POST /api/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}

	expiresAt := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := localstore.RevokeToken(r.Context(), h.Local, claims.ID, expiresAt); err != nil {
		storeError(w, r, err, "failed to revoke token")
		return
	}

	slog.Info("user logged out", "code", claims.UserCode)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
