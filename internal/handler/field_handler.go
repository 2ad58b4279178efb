package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/internal/service"
)

// FieldHandler handles football field endpoints
type FieldHandler struct {
	fields    *service.FieldService
	discovery *service.DiscoveryService
}

func NewFieldHandler(fields *service.FieldService, discovery *service.DiscoveryService) *FieldHandler {
	return &FieldHandler{fields: fields, discovery: discovery}
}

// List godoc
// @Summary List fields
// @Description With lat and long the listing becomes a radius query.
// @Tags Fields
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param search query string false "Name or address contains"
// @Param min_price query number false "Minimum price per hour"
// @Param max_price query number false "Maximum price per hour"
// @Param lat query number false "Latitude"
// @Param long query number false "Longitude"
// @Param radius query number false "Radius in km (default 5)"
// @Param sort_by query string false "Sort key" Enums(name, price, distance)
// @Param sort_order query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} model.PaginatedFields
// @Failure 400 {object} model.ErrorResponse
// @Router /fields [get]
func (h *FieldHandler) List(c *gin.Context) {
	var filter model.FieldFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.fields.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Nearby godoc
// @Summary Fields within a radius, nearest first
// @Tags Fields
// @Produce json
// @Security BearerAuth
// @Param lat query number true "Latitude"
// @Param long query number true "Longitude"
// @Param radius query number false "Radius in km (default 5)"
// @Success 200 {array} model.Field
// @Failure 400 {object} model.ErrorResponse
// @Router /fields/nearby [get]
func (h *FieldHandler) Nearby(c *gin.Context) {
	var req model.NearbyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	filter := model.FieldFilter{Page: 1, Limit: 100, SortBy: "distance", SortOrder: "asc"}
	fields, _, err := h.discovery.FindNearbyFields(c.Request.Context(), req.Latitude, req.Longitude, req.Radius, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, fields)
}

// Get godoc
// @Summary Get a field
// @Tags Fields
// @Produce json
// @Security BearerAuth
// @Param id path string true "Field ID"
// @Success 200 {object} model.Field
// @Failure 404 {object} model.ErrorResponse
// @Router /fields/{id} [get]
func (h *FieldHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	field, err := h.fields.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, field)
}

// Create godoc
// @Summary Create a field (admin)
// @Tags Fields
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CreateFieldRequest true "Create field request"
// @Success 201 {object} model.Field
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /fields [post]
func (h *FieldHandler) Create(c *gin.Context) {
	var req model.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	field, err := h.fields.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, field)
}

// Update godoc
// @Summary Update a field (admin)
// @Tags Fields
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Field ID"
// @Param body body model.UpdateFieldRequest true "Fields to change"
// @Success 200 {object} model.Field
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /fields/{id} [patch]
func (h *FieldHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	field, err := h.fields.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, field)
}
