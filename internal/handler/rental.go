package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/impawawa/Final-Project/internal/models"
	"github.com/impawawa/Final-Project/internal/service"
	"go.uber.org/zap"
)

type RentalHandler struct {
	service *service.RentalService
	logger  *zap.Logger
}

func NewRentalHandler(service *service.RentalService, logger *zap.Logger) *RentalHandler {
	return &RentalHandler{service: service, logger: logger}
}

type rentalRequest struct {
	CarID     string `json:"car_id"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Status    string `json:"status"`
}

// Parses ids and dates, collecting per-field errors
func (r rentalRequest) input(requireCar bool) (service.RentalInput, map[string]string) {
	in := service.RentalInput{Status: models.RentalStatus(r.Status)}
	fields := make(map[string]string)

	switch {
	case r.CarID == "" && requireCar:
		fields["car_id"] = "This field is required."
	case r.CarID != "":
		id, err := uuid.Parse(r.CarID)
		if err != nil {
			fields["car_id"] = "Must be a valid UUID."
		}
		in.CarID = id
	}

	var err error
	if in.StartDate, err = time.Parse(dateLayout, r.StartDate); err != nil {
		fields["start_date"] = "Date has wrong format. Use YYYY-MM-DD."
	}
	if in.EndDate, err = time.Parse(dateLayout, r.EndDate); err != nil {
		fields["end_date"] = "Date has wrong format. Use YYYY-MM-DD."
	}

	return in, fields
}

func (h *RentalHandler) bind(c *gin.Context, requireCar bool) (service.RentalInput, bool) {
	var req rentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return service.RentalInput{}, false
	}

	in, fields := req.input(requireCar)
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
		return service.RentalInput{}, false
	}
	return in, true
}

// Handles GET /api/rentals
func (h *RentalHandler) List(c *gin.Context) {
	rentals, err := h.service.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]RentalResponse, 0, len(rentals))
	for _, r := range rentals {
		resp = append(resp, newRentalResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// Handles POST /api/rentals
func (h *RentalHandler) Create(c *gin.Context) {
	in, ok := h.bind(c, true)
	if !ok {
		return
	}

	rental, err := h.service.Create(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newRentalResponse(*rental))
}

// Handles GET /api/rentals/:id
func (h *RentalHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rental, err := h.service.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newRentalResponse(*rental))
}

// Handles PUT /api/rentals/:id
func (h *RentalHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	in, ok := h.bind(c, false)
	if !ok {
		return
	}

	rental, err := h.service.Update(c.Request.Context(), currentUserID(c), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newRentalResponse(*rental))
}

// Handles DELETE /api/rentals/:id
func (h *RentalHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
