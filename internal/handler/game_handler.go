package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/internal/service"
)

// GameHandler handles game lifecycle, membership and discovery endpoints
type GameHandler struct {
	games     *service.GameService
	discovery *service.DiscoveryService
}

func NewGameHandler(games *service.GameService, discovery *service.DiscoveryService) *GameHandler {
	return &GameHandler{games: games, discovery: discovery}
}

// Create godoc
// @Summary Organize a new game
// @Tags Games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CreateGameRequest true "Create game request"
// @Success 201 {object} model.Game
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /games [post]
func (h *GameHandler) Create(c *gin.Context) {
	var req model.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	game, err := h.games.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, game)
}

// List godoc
// @Summary List games
// @Tags Games
// @Produce json
// @Security BearerAuth
// @Param field_id query string false "Field ID"
// @Param status query string false "Game status" Enums(open, full, cancelled, completed)
// @Success 200 {array} model.Game
// @Router /games [get]
func (h *GameHandler) List(c *gin.Context) {
	var req model.GameListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	games, err := h.games.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, games)
}

// Nearby godoc
// @Summary Find open upcoming games near a point
// @Description Games are grouped by field, fields ordered by name then distance.
// @Tags Games
// @Produce json
// @Security BearerAuth
// @Param lat query number true "Latitude"
// @Param long query number true "Longitude"
// @Param radius query number false "Radius in km (default 5)"
// @Success 200 {array} model.NearbyFieldGroup
// @Failure 400 {object} model.ErrorResponse
// @Router /games/nearby [get]
func (h *GameHandler) Nearby(c *gin.Context) {
	var req model.NearbyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	groups, err := h.discovery.FindNearby(c.Request.Context(), currentUserID(c), req.Latitude, req.Longitude, req.Radius)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// Get godoc
// @Summary Get a game
// @Tags Games
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Success 200 {object} model.Game
// @Failure 404 {object} model.ErrorResponse
// @Router /games/{id} [get]
func (h *GameHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	game, err := h.games.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

// Update godoc
// @Summary Update a game (organizer only)
// @Tags Games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Param body body model.UpdateGameRequest true "Fields to change"
// @Success 200 {object} model.Game
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /games/{id} [patch]
func (h *GameHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.UpdateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	game, err := h.games.Update(c.Request.Context(), id, currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

// Cancel godoc
// @Summary Cancel a game (organizer only)
// @Tags Games
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Success 200 {object} model.Game
// @Failure 403 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /games/{id}/cancel [post]
func (h *GameHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	game, err := h.games.Cancel(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

// Complete godoc
// @Summary Mark a game as completed (organizer only)
// @Tags Games
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Success 200 {object} model.Game
// @Failure 403 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /games/{id}/complete [post]
func (h *GameHandler) Complete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	game, err := h.games.Complete(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

// Join godoc
// @Summary Join a game
// @Tags Games
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Success 201 {object} model.GamePlayer
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /games/{id}/join [post]
func (h *GameHandler) Join(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	membership, err := h.games.Join(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, membership)
}

// Leave godoc
// @Summary Leave a game
// @Tags Games
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /games/{id}/leave [post]
func (h *GameHandler) Leave(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.games.Leave(c.Request.Context(), id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Left game successfully"})
}

// Players godoc
// @Summary List joined players of a game
// @Tags Games
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Success 200 {object} model.GamePlayersResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /games/{id}/players [get]
func (h *GameHandler) Players(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	players, err := h.games.ListPlayers(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, players)
}

// Kick godoc
// @Summary Remove a player from a game (organizer only)
// @Tags Games
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Param playerId path string true "Player ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /games/{id}/kick/{playerId} [post]
func (h *GameHandler) Kick(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.games.Kick(c.Request.Context(), id, c.Param("playerId"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Player removed from game"})
}
