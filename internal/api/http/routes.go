package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/MHamoud95/Berlin-weather-pipeline/internal/scheduler"
	"github.com/MHamoud95/Berlin-weather-pipeline/internal/weather"
)

const defaultHistoryLimit = 100

var validate = validator.New()

// Trigger starts runs on demand and reports their outcome.
type Trigger interface {
	Trigger(ctx context.Context) (weather.Run, error)
	Stats() scheduler.Stats
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, trigger Trigger, reader weather.Reader) {
	v1 := app.Group("/api/v1")

	v1.Post("/runs", func(c *fiber.Ctx) error {
		run, err := trigger.Trigger(c.UserContext())
		if err != nil {
			return c.Status(runFailureStatus(err)).JSON(run)
		}
		return c.Status(fiber.StatusCreated).JSON(run)
	})

	v1.Get("/runs/stats", func(c *fiber.Ctx) error {
		return c.JSON(trigger.Stats())
	})

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		rec, err := reader.Latest(c.UserContext())
		if err != nil {
			if errors.Is(err, weather.ErrNoRecords) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data stored yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather data")
		}
		return c.JSON(rec)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		records, err := reader.History(c.UserContext(), req.From, req.To, req.Limit)
		if err != nil {
			if errors.Is(err, weather.ErrNoRecords) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather history")
		}

		return c.JSON(fiber.Map{
			"from":    req.From,
			"to":      req.To,
			"records": records,
		})
	})
}

// runFailureStatus maps a failed run to the status reported to the caller.
func runFailureStatus(err error) int {
	var (
		fetchErr  *weather.FetchError
		schemaErr *weather.SchemaError
	)
	switch {
	case errors.As(err, &fetchErr):
		return fiber.StatusBadGateway
	case errors.As(err, &schemaErr):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From  time.Time `validate:"required"`
	To    time.Time `validate:"required,gtefield=From"`
	Limit int       `validate:"min=1,max=1000"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	h.Limit = defaultHistoryLimit
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		h.Limit = n
	}
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
