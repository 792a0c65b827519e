package httpapi

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/menta2k/aqi-analyzer/internal/observability"
	"github.com/menta2k/aqi-analyzer/pkg/analysis"
	"github.com/menta2k/aqi-analyzer/pkg/catalog"
	"github.com/menta2k/aqi-analyzer/pkg/estimator"
	"github.com/menta2k/aqi-analyzer/pkg/processing"
	"github.com/menta2k/aqi-analyzer/pkg/trend"
	"github.com/menta2k/aqi-analyzer/pkg/types"
)

const serviceName = "aqi-analyzer"

var validate = validator.New()

// Analyzer is the part of the AQI analyzer the API serves
type Analyzer interface {
	Catalog() *catalog.Catalog
	Estimate(predictions []types.Prediction) (types.Estimate, error)
	AnalyzeReader(ctx context.Context, r io.Reader) (analysis.Result, error)
	Latest() (analysis.Result, bool)
}

// Deps are the collaborators of the HTTP handlers
type Deps struct {
	Analyzer Analyzer
	Metrics  *observability.Metrics
	Log      logrus.FieldLogger
}

// Options configures the Fiber app
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
	// AccessLog receives one line per request; nil disables access logging.
	AccessLog io.Writer
}

// NewApp builds the Fiber app with middleware, health, metrics and API routes.
func NewApp(deps Deps, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		BodyLimit:             opts.BodyLimit,
		ErrorHandler:          ErrorHandler,
	})

	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{Output: opts.AccessLog}))
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	RegisterRoutes(app, deps)
	return app
}

// ErrorHandler answers every error with {"error":true,"message":...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetricsForTesting()
	}
	h := &handlers{Deps: deps}

	v1 := app.Group("/api/v1")
	v1.Get("/catalog", h.catalog)
	v1.Post("/estimate", h.estimate)
	v1.Post("/analyze", h.analyze)
	v1.Get("/analysis/latest", h.latest)
	v1.Get("/trend", h.trend)
}

type handlers struct {
	Deps
}

func (h *handlers) catalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": h.Analyzer.Catalog().Entries(),
	})
}

// estimateRequest is the body of POST /api/v1/estimate. An empty list passes
// validation so the estimator reports it as invalid input.
type estimateRequest struct {
	Predictions []types.Prediction `json:"predictions" validate:"dive"`
}

func (h *handlers) estimate(c *fiber.Ctx) error {
	var req estimateRequest
	if err := c.BodyParser(&req); err != nil {
		h.countError(kindInvalidInput)
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		h.countError(kindInvalidInput)
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	est, err := h.Analyzer.Estimate(req.Predictions)
	if err != nil {
		return h.fail(err)
	}

	h.Metrics.Estimates.WithLabelValues(est.TopCategory).Inc()
	return c.JSON(trend.Rate(est))
}

func (h *handlers) analyze(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		h.countError(kindNotImage)
		return fiber.NewError(fiber.StatusBadRequest, "multipart field \"image\" is required")
	}
	h.Metrics.Uploads.Inc()

	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to read upload")
	}
	defer f.Close()

	start := time.Now()
	res, err := h.Analyzer.AnalyzeReader(c.UserContext(), f)
	h.Metrics.ClassifyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		h.Log.WithFields(logrus.Fields{
			"file":  fh.Filename,
			"size":  fh.Size,
			"error": err,
		}).Warn("analysis failed")
		return h.fail(err)
	}

	h.Log.WithFields(logrus.Fields{
		"id":       res.ID,
		"file":     fh.Filename,
		"aqi":      res.Estimate.EstimatedAQI,
		"category": res.Estimate.TopCategory,
	}).Info("analysis complete")
	h.Metrics.Estimates.WithLabelValues(res.Estimate.TopCategory).Inc()
	return c.JSON(rate(res))
}

func (h *handlers) latest(c *fiber.Ctx) error {
	res, ok := h.Analyzer.Latest()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no analysis yet")
	}
	return c.JSON(rate(res))
}

// ratedResult replaces the embedded estimate with its rated form on the wire.
type ratedResult struct {
	analysis.Result
	Estimate trend.RatedEstimate `json:"estimate"`
}

func rate(res analysis.Result) ratedResult {
	return ratedResult{Result: res, Estimate: trend.Rate(res.Estimate)}
}

func (h *handlers) trend(c *fiber.Ctx) error {
	points := trend.Monthly()
	return c.JSON(fiber.Map{
		"summary": trend.Summarize(points, trend.CurrentMonth, trend.PreviousMonth),
		"monthly": points,
	})
}

// Error kinds used as metric labels
const (
	kindInvalidInput     = "invalid_input"
	kindCategoryNotFound = "category_not_found"
	kindNotImage         = "not_image"
	kindSuperseded       = "superseded"
	kindClassifier       = "classifier"
)

// classify maps a domain error to its metric kind and HTTP status.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, estimator.ErrInvalidInput):
		return kindInvalidInput, fiber.StatusBadRequest
	case errors.Is(err, estimator.ErrCategoryNotFound):
		return kindCategoryNotFound, fiber.StatusUnprocessableEntity
	case errors.Is(err, processing.ErrNotImage), errors.Is(err, processing.ErrImageTooSmall):
		return kindNotImage, fiber.StatusBadRequest
	case errors.Is(err, analysis.ErrSuperseded):
		return kindSuperseded, fiber.StatusConflict
	default:
		return kindClassifier, fiber.StatusBadGateway
	}
}

func (h *handlers) fail(err error) error {
	kind, status := classify(err)
	h.countError(kind)
	return fiber.NewError(status, err.Error())
}

func (h *handlers) countError(kind string) {
	h.Metrics.Errors.WithLabelValues(kind).Inc()
}
