package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/impawawa/Final-Project/internal/models"
	"github.com/impawawa/Final-Project/internal/service"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ContextUserID is the gin context key RequireAuth stores the caller's ID under
const ContextUserID = "user_id"

var registerOnce sync.Once

// RegisterValidation makes binding errors report JSON field names.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// Converts a ShouldBindJSON error into per-field messages
func bindingErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": "Malformed JSON request body."}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "This field is required."
		case "email":
			fields[fe.Field()] = "Enter a valid email address."
		case "max":
			fields[fe.Field()] = fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		default:
			fields[fe.Field()] = fmt.Sprintf("Failed on the %q rule.", fe.Tag())
		}
	}
	return fields
}

func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
}

// Maps service errors to HTTP responses
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

func currentUserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(ContextUserID)
	userID, _ := id.(uuid.UUID)
	return userID
}

// Parses the :id path parameter, answering 404 when it is not a UUID
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return uuid.Nil, false
	}
	return id, true
}

type CarResponse struct {
	ID          uuid.UUID          `json:"id"`
	Owner       models.UserSummary `json:"owner"`
	Brand       string             `json:"brand"`
	Model       string             `json:"model"`
	Year        int                `json:"year"`
	PricePerDay float64            `json:"price_per_day"`
	Description string             `json:"description"`
	IsAvailable bool               `json:"is_available"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func newCarResponse(car models.Car) CarResponse {
	return CarResponse{
		ID:          car.ID,
		Owner:       car.Owner.Summary(),
		Brand:       car.Brand,
		Model:       car.Model,
		Year:        car.Year,
		PricePerDay: car.PricePerDay,
		Description: car.Description,
		IsAvailable: car.IsAvailable,
		CreatedAt:   car.CreatedAt,
		UpdatedAt:   car.UpdatedAt,
	}
}

type RentalResponse struct {
	ID         uuid.UUID           `json:"id"`
	Car        CarResponse         `json:"car"`
	Renter     models.UserSummary  `json:"renter"`
	StartDate  string              `json:"start_date"`
	EndDate    string              `json:"end_date"`
	TotalPrice float64             `json:"total_price"`
	Status     models.RentalStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func newRentalResponse(r models.Rental) RentalResponse {
	return RentalResponse{
		ID:         r.ID,
		Car:        newCarResponse(r.Car),
		Renter:     r.Renter.Summary(),
		StartDate:  r.StartDate.Format(dateLayout),
		EndDate:    r.EndDate.Format(dateLayout),
		TotalPrice: r.TotalPrice,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
