package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-marks/internal/dto"
	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
	"github.com/noah-isme/sma-marks/pkg/response"
)

type tokenIssuer interface {
	Login(subject, password string) (*models.IssuedToken, error)
}

// AuthHandler exchanges the admin password for a bearer token.
type AuthHandler struct {
	tokens tokenIssuer
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(tokens tokenIssuer) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Token godoc
// @Summary Obtain an admin bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Admin credentials"
// @Success 200 {object} response.Envelope{data=models.IssuedToken}
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	issued, err := h.tokens.Login(req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issued)
}
