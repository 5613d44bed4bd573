package httpapi

import (
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/agri-advisor/internal/advisor"
	"github.com/i474232898/agri-advisor/internal/weather"
)

var validate = validator.New()

const defaultMaxUpload = 16 << 20

// Options carries the non-service settings of the HTTP layer.
type Options struct {
	MaxUploadBytes int
	ForecastDays   int
}

type handler struct {
	advisor   *advisor.Service
	weather   *weather.Service
	maxUpload int
	days      int
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, adv *advisor.Service, ws *weather.Service, opts Options) {
	h := &handler{
		advisor:   adv,
		weather:   ws,
		maxUpload: opts.MaxUploadBytes,
		days:      opts.ForecastDays,
	}
	if h.maxUpload <= 0 {
		h.maxUpload = defaultMaxUpload
	}
	if h.days <= 0 {
		h.days = weather.DefaultForecastDays
	}

	v1 := app.Group("/api/v1")

	v1.Post("/get-advice", h.agricultureAdvice)
	v1.Post("/water-management", h.waterManagement)
	v1.Post("/analyze-image", h.analyzeImage)
	v1.Post("/analyze-disease", h.analyzeDisease)
	v1.Post("/bio-fertilizer", h.bioFertilizer)
	v1.Post("/schemes", h.schemes)
	v1.Post("/weather", h.conditions)
	v1.Post("/weather-advice", h.weatherAdvice)
	v1.Get("/weather/forecast", h.forecast)
}

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (h *handler) agricultureAdvice(c *fiber.Ctx) error {
	var req adviceForm
	if err := bindForm(c, &req, "Please enter your question"); err != nil {
		return err
	}

	advice, err := h.advisor.AgricultureAdvice(c.UserContext(), req.Question)
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(fiber.Map{"advice": advice})
}

func (h *handler) waterManagement(c *fiber.Ctx) error {
	var req waterForm
	if err := bindForm(c, &req, "Please provide both crop type and soil type"); err != nil {
		return err
	}

	advice, err := h.advisor.WaterAdvice(c.UserContext(), req.CropType, req.SoilType)
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(fiber.Map{"advice": advice})
}

func (h *handler) analyzeImage(c *fiber.Ctx) error {
	data, err := h.readImage(c)
	if err != nil {
		return err
	}

	result, err := h.advisor.AnalyzeCrop(c.UserContext(), data)
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(result)
}

func (h *handler) analyzeDisease(c *fiber.Ctx) error {
	data, err := h.readImage(c)
	if err != nil {
		return err
	}

	diagnosis, err := h.advisor.DiagnoseDisease(c.UserContext(), data)
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(fiber.Map{"diagnosis": diagnosis})
}

func (h *handler) bioFertilizer(c *fiber.Ctx) error {
	var req bioFertilizerForm
	if err := bindForm(c, &req, "Please provide all required fields"); err != nil {
		return err
	}

	advice, err := h.advisor.BioFertilizerAdvice(c.UserContext(), req.CropType, req.SoilType, req.GrowthStage)
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(fiber.Map{"advice": advice})
}

func (h *handler) schemes(c *fiber.Ctx) error {
	var req schemeForm
	if err := bindForm(c, &req, "Please select both state and category"); err != nil {
		return err
	}

	info, err := h.advisor.SchemeInformation(c.UserContext(), req.State, req.Category)
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(fiber.Map{"schemes": info})
}

func (h *handler) conditions(c *fiber.Ctx) error {
	var req cityForm
	if err := bindForm(c, &req, "Please enter a city name"); err != nil {
		return err
	}

	report, err := h.weather.Conditions(c.UserContext(), req.toLocation())
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(report)
}

func (h *handler) weatherAdvice(c *fiber.Ctx) error {
	var req weatherAdviceForm
	if err := bindForm(c, &req, "Please enter a city name"); err != nil {
		return err
	}

	loc := weather.Location{City: req.City, Country: req.Country}
	advice, err := h.advisor.WeatherAdvice(c.UserContext(), loc, req.CropType)
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(advice)
}

func (h *handler) forecast(c *fiber.Ctx) error {
	var q forecastQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "days must be a whole number")
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	days := q.Days
	if days == 0 {
		days = h.days
	}

	result := h.weather.Forecast(c.UserContext(), weather.Location{City: q.City, Country: q.Country}, days)
	if result.Failed() {
		return c.Status(statusFor(result.Err())).JSON(result)
	}
	return c.JSON(result)
}

// readImage pulls the "image" part out of a multipart upload.
func (h *handler) readImage(c *fiber.Ctx) ([]byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No image uploaded")
	}
	if fh.Filename == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No image selected")
	}
	if fh.Size > int64(h.maxUpload) {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "Image is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Failed to open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(h.maxUpload)+1))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file")
	}
	if len(data) > h.maxUpload {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "Image is too large")
	}
	return data, nil
}
