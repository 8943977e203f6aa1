package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/usecase"
)

// The generic acknowledgement for reset requests. Known and unknown
// emails produce this byte-identical response, so the endpoint cannot be
// used to probe for registered addresses.
const resetRequestedMessage = "if the email is registered, a recovery code has been sent"

// PasswordHandler serves the three-step password recovery protocol.
type PasswordHandler struct {
	reset *usecase.PasswordResetService
}

// NewPasswordHandler builds the password recovery handler.
func NewPasswordHandler(reset *usecase.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{reset: reset}
}

// RequestReset handles POST /auth/password/request.
func (h *PasswordHandler) RequestReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	if err := h.reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetDeliveryFailed, Status: http.StatusBadRequest, Message: "could not send the recovery email, try again"},
		}, http.StatusInternalServerError, "password reset request failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: resetRequestedMessage,
	})
}

// VerifyCode handles POST /auth/password/verify.
func (h *PasswordHandler) VerifyCode(c *gin.Context) {
	var req PasswordVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	if err := h.reset.VerifyCode(c.Request.Context(), req.Email, req.Code); err != nil {
		RespondWithMappedError(c, err, resetCodeErrorCases,
			http.StatusInternalServerError, "code verification failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "code verified successfully",
	})
}

// ResetPassword handles POST /auth/password/reset.
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	if err := h.reset.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, resetCodeErrorCases,
			http.StatusInternalServerError, "password reset failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "password reset successful",
	})
}

var resetCodeErrorCases = []ErrorCase{
	{Err: usecase.ErrResetCodeInvalid, Status: http.StatusUnauthorized, Message: "invalid or expired code"},
	{Err: usecase.ErrResetCodeExpired, Status: http.StatusUnauthorized, Message: "code has expired"},
}
