package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/owm-current-weather/internal/geocode"
	"github.com/i474232898/owm-current-weather/internal/metrics"
	"github.com/i474232898/owm-current-weather/owm"
)

var validate = validator.New()

// Fetcher is the part of *owm.Client the handlers use.
type Fetcher interface {
	Fetch(ctx context.Context, sel owm.LocationSelector, mods owm.Modifiers) (owm.Result, error)
}

// Options carries optional collaborators for the routes.
type Options struct {
	// Defaults fill in units and language when a request leaves them out.
	Defaults owm.Modifiers
	// Geocoder enables the address parameter when non-nil.
	Geocoder geocode.Resolver
	Metrics  *metrics.Metrics
}

// ErrorHandler renders every handler error as a JSON body.
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
func RegisterRoutes(app *fiber.App, client Fetcher, opts Options) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		q, err := parseCurrentQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		sel, err := q.selector(c.UserContext(), opts.Geocoder)
		if err != nil {
			return err
		}

		start := time.Now()
		res, err := client.Fetch(c.UserContext(), sel, q.modifiers(opts.Defaults))
		opts.Metrics.Observe(sel, "api", res, err, time.Since(start))

		switch {
		case errors.Is(err, owm.ErrInvalidSelector):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, owm.ErrNormalization):
			return fiber.NewError(fiber.StatusBadGateway, "unexpected weather payload from upstream")
		case err != nil:
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
		}

		if res.Failure != nil {
			return c.Status(upstreamStatus(res.Failure.Code)).JSON(fiber.Map{
				"error":   true,
				"code":    res.Failure.Code,
				"message": res.Failure.Message,
			})
		}
		if res.Raw != nil {
			return c.JSON(res.Raw)
		}
		return c.JSON(res.Record)
	})
}

// upstreamStatus passes through upstream error codes that are valid HTTP
// error statuses.
func upstreamStatus(code int) int {
	if code >= 400 && code <= 599 {
		return code
	}
	return fiber.StatusBadGateway
}

// currentQuery holds query parameters for the current weather endpoint.
// Exactly one selector family is used, in the order id, lat/lon, zip,
// city, address.
type currentQuery struct {
	City    string `validate:"omitempty,max=120"`
	State   string `validate:"omitempty,max=120"`
	Country string `validate:"omitempty,max=60"`
	ID      string `validate:"omitempty,number"`
	Lat     string `validate:"omitempty,latitude"`
	Lon     string `validate:"omitempty,longitude"`
	Zip     string `validate:"omitempty,max=20"`
	Address string `validate:"omitempty,max=250"`

	Units  string
	Lang   string
	Format string `validate:"omitempty,oneof=raw json dict structured"`
}

func parseCurrentQuery(c *fiber.Ctx) (currentQuery, error) {
	var q currentQuery

	q.City = c.Query("city")
	q.State = c.Query("state")
	q.Country = c.Query("country")
	q.ID = c.Query("id")
	q.Lat = c.Query("lat")
	q.Lon = c.Query("lon")
	q.Zip = c.Query("zip")
	q.Address = c.Query("address")
	q.Units = c.Query("units")
	q.Lang = c.Query("lang")
	q.Format = c.Query("format")

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	if (q.Lat == "") != (q.Lon == "") {
		return q, errors.New("lat and lon must be provided together")
	}

	return q, nil
}

func (q currentQuery) selector(ctx context.Context, geo geocode.Resolver) (owm.LocationSelector, error) {
	switch {
	case q.ID != "":
		id, err := strconv.ParseInt(q.ID, 10, 64)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id parameter")
		}
		return owm.ByID{ID: id}, nil

	case q.Lat != "":
		lat, err := strconv.ParseFloat(q.Lat, 64)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid lat parameter")
		}
		lon, err := strconv.ParseFloat(q.Lon, 64)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid lon parameter")
		}
		return owm.ByCoordinates{Latitude: lat, Longitude: lon}, nil

	case q.Zip != "":
		return owm.ByPostalCode{Code: q.Zip, Country: q.Country}, nil

	case q.City != "":
		return owm.ByName{City: q.City, State: q.State, Country: q.Country}, nil

	case q.Address != "":
		if geo == nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "address lookups are not enabled")
		}
		sel, err := geo.Resolve(ctx, geocode.Address{
			Street:  q.Address,
			State:   q.State,
			Country: q.Country,
		})
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadGateway, "failed to resolve address")
		}
		return sel, nil
	}

	return nil, fiber.NewError(fiber.StatusBadRequest, "location is required (provide city, id, lat/lon, zip or address)")
}

func (q currentQuery) modifiers(defaults owm.Modifiers) owm.Modifiers {
	mods := owm.Modifiers{
		Units:    defaults.Units,
		Language: defaults.Language,
		Output:   owm.ParseOutputFormat(q.Format),
	}
	if q.Units != "" {
		mods.Units = q.Units
	}
	if q.Lang != "" {
		mods.Language = q.Lang
	}
	return mods
}
