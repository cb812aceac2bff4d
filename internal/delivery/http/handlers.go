package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/smartcity/evsite/internal/domain"
	"github.com/smartcity/evsite/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	predictions  *service.PredictionService
	recorder     *service.RecordingService
	repo         domain.PredictionRepository
	maxLocations int
}

// NewHandler creates a new handler
func NewHandler(
	predictions *service.PredictionService,
	recorder *service.RecordingService,
	repo domain.PredictionRepository,
	maxLocations int,
) *Handler {
	return &Handler{
		predictions:  predictions,
		recorder:     recorder,
		repo:         repo,
		maxLocations: maxLocations,
	}
}

// BatchRequest is the batch analysis request body.
type BatchRequest struct {
	Locations []domain.LocationRecord `json:"locations"`
}

func (h *Handler) available() bool {
	return h.predictions != nil && h.predictions.Registry() != nil
}

// Home returns the service banner and endpoint listing
func (h *Handler) Home(c *fiber.Ctx) error {
	status := "active"
	if !h.available() {
		status = "error"
	}

	return c.JSON(fiber.Map{
		"message":   "EV Station Location Planning & ROI Prediction API",
		"status":    status,
		"timestamp": time.Now(),
		"endpoints": fiber.Map{
			"/api/v1/predict":       "POST - Analyze EV station location",
			"/api/v1/batch_analyze": "POST - Analyze multiple locations",
			"/api/v1/models":        "GET - List loaded models",
			"/api/v1/sample":        "GET - Sample location data",
			"/api/v1/predictions":   "GET - Recent analyses",
			"/health":               "GET - API health check",
		},
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "healthy"
	modelsLoaded := 0
	if h.available() {
		modelsLoaded = len(h.predictions.Registry().Models())
	} else {
		status = "unhealthy"
	}

	database := "ok"
	if h.repo == nil {
		database = "disabled"
	} else if err := h.repo.Health(c.Context()); err != nil {
		zap.L().Warn("database health check failed", zap.Error(err))
		database = "unavailable"
	}

	return c.JSON(fiber.Map{
		"status":        status,
		"timestamp":     time.Now(),
		"models_loaded": modelsLoaded,
		"database":      database,
		"service":       "EV Station Location Planning",
	})
}

// ListModels returns the registered models
func (h *Handler) ListModels(c *fiber.Ctx) error {
	if !h.available() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "EV predictor not initialized")
	}

	models := fiber.Map{}
	for _, m := range h.predictions.Registry().Models() {
		models[m.Name] = m
	}

	return c.JSON(fiber.Map{
		"models":       models,
		"total_models": len(models),
		"purpose":      "EV Station Location Planning and ROI Prediction",
	})
}

// Sample returns an example location record
func (h *Handler) Sample(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sample_location": domain.SampleLocation(),
		"description":     "Sample data for EV station location analysis",
		"required_fields": domain.RequiredFields,
	})
}

// Predict analyzes a single location
func (h *Handler) Predict(c *fiber.Ctx) error {
	if !h.available() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "EV predictor not available")
	}

	var loc domain.LocationRecord
	if err := c.BodyParser(&loc); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if len(loc) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No location data provided")
	}

	analysis, err := h.predictions.Analyze(c.Context(), loc)
	if err != nil {
		return h.predictionError(c, err)
	}

	if h.recorder != nil {
		h.recorder.RecordAsync(loc, analysis)
	}

	zap.L().Info("location analysis completed",
		zap.String("analysis_id", analysis.AnalysisID),
		zap.Float64("viability_score", analysis.ViabilityScore),
	)

	return c.JSON(analysis)
}

// BatchAnalyze analyzes multiple locations at once
func (h *Handler) BatchAnalyze(c *fiber.Ctx) error {
	if !h.available() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "EV predictor not available")
	}

	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Locations == nil {
		return fiber.NewError(fiber.StatusBadRequest, "No locations data provided")
	}
	if h.maxLocations > 0 && len(req.Locations) > h.maxLocations {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":         "Too many locations in batch",
			"max_locations": h.maxLocations,
		})
	}

	result, err := h.predictions.PredictBatch(c.Context(), req.Locations)
	if err != nil {
		return h.predictionError(c, err)
	}

	return c.JSON(result)
}

// RecentPredictions returns the prediction log
func (h *Handler) RecentPredictions(c *fiber.Ctx) error {
	if h.repo == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Prediction log not configured")
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	data, err := h.repo.RecentPredictions(c.Context(), limit)
	if err != nil {
		zap.L().Error("failed to fetch prediction log", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch prediction history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

func (h *Handler) predictionError(c *fiber.Ctx, err error) error {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":           validation.Error(),
			"missing_fields":  validation.Missing,
			"required_fields": domain.RequiredFields,
		})
	case errors.Is(err, service.ErrModelsUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		zap.L().Error("EV station prediction error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":     err.Error(),
			"timestamp": time.Now(),
		})
	}
}
