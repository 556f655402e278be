package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tasklist/internal/models"
)

// SendCode godoc
// @Summary      Send a verification code to any address
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      models.EmailRequest  true  "Address"
// @Success      200   {object}  map[string]string
// @Failure      429   {object}  map[string]interface{}
// @Router       /auth/send-code [post]
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req models.EmailRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.auth.SendCode(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// Verify godoc
// @Summary      Verify an e-mail address
// @Description  An empty code requests a new one instead.
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      models.VerifyRequest  true  "Address and code"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]interface{}
// @Router       /auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	if strings.TrimSpace(req.Code) == "" {
		if err := h.auth.ResendCode(ctx, req.Email); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "New verification code sent"})
		return
	}

	if err := h.auth.VerifyEmail(ctx, req.Email, req.Code); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// Resend godoc
// @Summary      Resend the verification code
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      models.EmailRequest  true  "Address"
// @Success      200   {object}  map[string]string
// @Failure      429   {object}  map[string]interface{}
// @Router       /auth/resend [post]
func (h *AuthHandler) Resend(c *gin.Context) {
	var req models.EmailRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.auth.ResendCode(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "New verification code sent"})
}
