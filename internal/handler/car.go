package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/impawawa/Final-Project/internal/service"
	"go.uber.org/zap"
)

type CarHandler struct {
	service *service.CarService
	logger  *zap.Logger
}

func NewCarHandler(service *service.CarService, logger *zap.Logger) *CarHandler {
	return &CarHandler{service: service, logger: logger}
}

type carRequest struct {
	Brand       string  `json:"brand" binding:"required,max=100"`
	Model       string  `json:"model" binding:"required,max=100"`
	Year        int     `json:"year" binding:"required"`
	PricePerDay float64 `json:"price_per_day" binding:"required"`
	Description string  `json:"description" binding:"required"`
	IsAvailable *bool   `json:"is_available"`
}

func (r carRequest) input() service.CarInput {
	return service.CarInput{
		Brand:       r.Brand,
		Model:       r.Model,
		Year:        r.Year,
		PricePerDay: r.PricePerDay,
		Description: r.Description,
		IsAvailable: r.IsAvailable,
	}
}

// Handles GET /api/cars
func (h *CarHandler) List(c *gin.Context) {
	cars, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]CarResponse, 0, len(cars))
	for _, car := range cars {
		resp = append(resp, newCarResponse(car))
	}
	c.JSON(http.StatusOK, resp)
}

// Handles POST /api/cars
func (h *CarHandler) Create(c *gin.Context) {
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	car, err := h.service.Create(c.Request.Context(), currentUserID(c), req.input())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newCarResponse(*car))
}

// Handles GET /api/cars/:id
func (h *CarHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	car, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newCarResponse(*car))
}

// Handles PUT /api/cars/:id
func (h *CarHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	car, err := h.service.Update(c.Request.Context(), currentUserID(c), id, req.input())
	if errors.Is(err, service.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to update this car"})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newCarResponse(*car))
}

// Handles DELETE /api/cars/:id
func (h *CarHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	car, err := h.service.Delete(c.Request.Context(), currentUserID(c), id)
	if errors.Is(err, service.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to delete this car"})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Car %s has been successfully deleted", car),
	})
}
