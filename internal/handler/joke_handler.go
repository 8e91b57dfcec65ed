package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-marks/internal/dto"
	"github.com/noah-isme/sma-marks/internal/models"
	"github.com/noah-isme/sma-marks/pkg/response"
)

type jokeTeller interface {
	Next(ctx context.Context) (*models.JokeDraw, error)
	Punchline() (string, error)
}

// JokeHandler serves the joke teller.
type JokeHandler struct {
	jokes jokeTeller
}

// NewJokeHandler constructs JokeHandler.
func NewJokeHandler(jokes jokeTeller) *JokeHandler {
	return &JokeHandler{jokes: jokes}
}

// Next godoc
// @Summary Draw a random joke setup
// @Tags Jokes
// @Produce json
// @Success 200 {object} response.Envelope{data=models.JokeDraw}
// @Router /jokes/next [get]
func (h *JokeHandler) Next(c *gin.Context) {
	draw, err := h.jokes.Next(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draw)
}

// Punchline godoc
// @Summary Reveal the punchline of the last drawn joke
// @Tags Jokes
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.PunchlineResponse}
// @Failure 404 {object} response.Envelope
// @Router /jokes/punchline [get]
func (h *JokeHandler) Punchline(c *gin.Context) {
	punchline, err := h.jokes.Punchline()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.PunchlineResponse{Punchline: punchline})
}
