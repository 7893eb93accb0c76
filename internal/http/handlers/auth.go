package handlers

import (
	"net/http"

	"kodbank/internal/http/middleware"
	"kodbank/internal/logger"
	"kodbank/internal/service"

	"github.com/gin-gonic/gin"
)

type emailRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type mpinRequest struct {
	Email string `json:"email"`
	MPIN  string `json:"mpin"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration started. Check your email for the verification code.",
		"email":   u.Email,
	})
}

func (h *Handler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	available, err := h.Auth.UsernameAvailable(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"available": available}
	if len(username) < service.MinUsernameLength {
		resp["message"] = "Too short"
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ResendOTP(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Auth.ResendOTP(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "A new verification code has been sent."})
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Auth.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account verified. Set your mPIN next.", "email": req.Email})
}

func (h *Handler) SetupMPIN(c *gin.Context) {
	var req mpinRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Auth.SetupMPIN(c.Request.Context(), req.Email, req.MPIN); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "mPIN set."})
}

func (h *Handler) VerifyMPIN(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req mpinRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Auth.VerifyMPIN(c.Request.Context(), uid, req.MPIN); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, sess, err := h.Auth.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, sess.Token, int(h.Sessions.TTL().Seconds()), "/", "", h.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"username":   u.Username,
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), middleware.TokenFromRequest(c)); err != nil {
		logger.WithContext(c.Request.Context()).Warn("session revocation failed", "error", err)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}
