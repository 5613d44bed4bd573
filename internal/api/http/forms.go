package httpapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/agri-advisor/internal/advisor"
	"github.com/i474232898/agri-advisor/internal/weather"
)

type adviceForm struct {
	Question string `form:"question" validate:"required"`
}

type waterForm struct {
	CropType string `form:"crop_type" validate:"required"`
	SoilType string `form:"soil_type" validate:"required"`
}

type bioFertilizerForm struct {
	CropType    string `form:"crop_type" validate:"required"`
	SoilType    string `form:"soil_type" validate:"required"`
	GrowthStage string `form:"growth_stage" validate:"required"`
}

type schemeForm struct {
	State    string `form:"state" validate:"required"`
	Category string `form:"category" validate:"required"`
}

type cityForm struct {
	City    string `form:"city" validate:"required"`
	Country string `form:"country"`
}

func (f cityForm) toLocation() weather.Location {
	return weather.Location{City: f.City, Country: f.Country}
}

type weatherAdviceForm struct {
	City     string `form:"city" validate:"required"`
	Country  string `form:"country"`
	CropType string `form:"crop_type"`
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	City    string `query:"city" validate:"required"`
	Country string `query:"country"`
	Days    int    `query:"days" validate:"omitempty,min=1,max=16"`
}

// bindForm parses a urlencoded or multipart body into dst, trims every string
// field and validates it. Validation failures are reported with msg.
func bindForm(c *fiber.Ctx, dst interface{}, msg string) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}
	trimStrings(dst)
	if err := validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}
	return nil
}

func trimStrings(dst interface{}) {
	switch f := dst.(type) {
	case *adviceForm:
		f.Question = strings.TrimSpace(f.Question)
	case *waterForm:
		f.CropType, f.SoilType = strings.TrimSpace(f.CropType), strings.TrimSpace(f.SoilType)
	case *bioFertilizerForm:
		f.CropType = strings.TrimSpace(f.CropType)
		f.SoilType = strings.TrimSpace(f.SoilType)
		f.GrowthStage = strings.TrimSpace(f.GrowthStage)
	case *schemeForm:
		f.State, f.Category = strings.TrimSpace(f.State), strings.TrimSpace(f.Category)
	case *cityForm:
		f.City, f.Country = strings.TrimSpace(f.City), strings.TrimSpace(f.Country)
	case *weatherAdviceForm:
		f.City, f.Country = strings.TrimSpace(f.City), strings.TrimSpace(f.Country)
		f.CropType = strings.TrimSpace(f.CropType)
	}
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	var fetchErr *weather.FetchError
	switch {
	case err == nil:
		return fiber.StatusInternalServerError
	case errors.Is(err, advisor.ErrInvalidImage), errors.Is(err, advisor.ErrUnsupportedImage):
		return fiber.StatusBadRequest
	case errors.As(err, &fetchErr):
		return fiber.StatusBadGateway
	case errors.Is(err, weather.ErrEmptyInput):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, weather.ErrInvalidDays):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusBadGateway
	}
}

func upstreamError(err error) error {
	return fiber.NewError(statusFor(err), err.Error())
}
