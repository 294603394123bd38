package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice-api/internal/auth"
	"backoffice-api/internal/metrics"
	"backoffice-api/internal/middleware"
	"backoffice-api/internal/model"
)

const refreshCookie = "refresh_token"

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		badRequest(c, "email, password and name required")
		return
	}
	if len(req.Password) < 8 {
		badRequest(c, "password too short")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}
	if err := h.store.CreateUser(c.Request.Context(), u); err != nil {
		// unique violation = dup email, but don't reveal that
		c.JSON(http.StatusConflict, gin.H{"error": "registration failed"})
		return
	}

	if req.Phone != "" || req.Company != "" {
		p := &model.Profile{UserID: u.ID, Phone: req.Phone, Company: req.Company}
		if err := h.store.UpsertProfile(c.Request.Context(), p); err != nil {
			h.log.Warn("profile create failed", zap.String("user", u.ID), zap.Error(err))
		}
	}

	tok, err := auth.MakeToken(u.ID, h.secret)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"userId": u.ID, "token": tok})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	metrics.AuthAttemptsCounter.Inc()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		badRequest(c, "email and password required")
		return
	}

	u, err := h.store.UserByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		metrics.AuthErrorsCounter.Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	tok, err := auth.MakeToken(u.ID, h.secret)
	if err != nil {
		fail(c, err)
		return
	}

	rawRefresh, tokenHash, err := auth.GenerateRefreshToken()
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := h.store.CreateRefreshToken(c.Request.Context(), u.ID, tokenHash, time.Now().Add(h.refreshTTL)); err != nil {
		fail(c, err)
		return
	}
	h.setRefreshCookie(c, rawRefresh)

	c.JSON(http.StatusOK, gin.H{"token": tok, "userId": u.ID, "name": u.Name})
}

func (h *Handler) Refresh(c *gin.Context) {
	raw, err := c.Cookie(refreshCookie)
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no refresh token"})
		return
	}

	rt, err := h.store.RefreshTokenByHash(c.Request.Context(), auth.HashRefreshToken(raw))
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		fail(c, err)
		return
	}
	newID := uuid.New().String()
	if err := h.store.RotateRefreshToken(c.Request.Context(), rt.ID, newID, rt.UserID, newHash, time.Now().Add(h.refreshTTL)); err != nil {
		fail(c, err)
		return
	}
	h.setRefreshCookie(c, newRaw)

	tok, err := auth.MakeToken(rt.UserID, h.secret)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok, "userId": rt.UserID})
}

func (h *Handler) Logout(c *gin.Context) {
	uid := middleware.UserID(c)
	if err := h.store.RevokeAllRefreshTokens(c.Request.Context(), uid); err != nil {
		fail(c, err)
		return
	}
	c.SetCookie(refreshCookie, "", -1, "/auth", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Me(c *gin.Context) {
	uid := middleware.UserID(c)

	u, err := h.store.UserByID(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	set, err := h.effectiveRoles(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	names := make([]string, 0, len(set))
	for r := range set {
		names = append(names, r)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"roles": names,
	})
}

func (h *Handler) setRefreshCookie(c *gin.Context, raw string) {
	c.SetCookie(refreshCookie, raw, int(h.refreshTTL.Seconds()), "/auth", "", false, true)
}
