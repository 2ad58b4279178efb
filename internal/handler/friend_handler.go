package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/internal/service"
)

// FriendHandler handles friendship endpoints
type FriendHandler struct {
	friends *service.FriendService
}

func NewFriendHandler(friends *service.FriendService) *FriendHandler {
	return &FriendHandler{friends: friends}
}

// Add godoc
// @Summary Send a friend request
// @Tags Friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.AddFriendRequest true "Friend to add"
// @Success 201 {object} model.FriendResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /friends [post]
func (h *FriendHandler) Add(c *gin.Context) {
	var req model.AddFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.friends.Request(c.Request.Context(), currentUserID(c), req.FriendID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Respond godoc
// @Summary Accept, reject or block a pending request
// @Tags Friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Friendship ID"
// @Param body body model.UpdateFriendRequest true "New status"
// @Success 200 {object} model.FriendResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /friends/{id} [patch]
func (h *FriendHandler) Respond(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.UpdateFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.friends.Respond(c.Request.Context(), id, currentUserID(c), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary List accepted friends
// @Tags Friends
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.FriendResponse
// @Router /friends [get]
func (h *FriendHandler) List(c *gin.Context) {
	friends, err := h.friends.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, friends)
}

// Pending godoc
// @Summary List pending requests, received and sent
// @Tags Friends
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.PendingRequestsResponse
// @Router /friends/pending [get]
func (h *FriendHandler) Pending(c *gin.Context) {
	resp, err := h.friends.Pending(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Remove godoc
// @Summary Remove a friendship or request
// @Tags Friends
// @Produce json
// @Security BearerAuth
// @Param id path string true "Friendship ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /friends/{id} [delete]
func (h *FriendHandler) Remove(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.friends.Remove(c.Request.Context(), id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Friend removed"})
}
