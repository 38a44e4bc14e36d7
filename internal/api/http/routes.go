package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/i474232898/sunspotter/internal/geo"
	"github.com/i474232898/sunspotter/internal/sunspot"
)

var validate = validator.New()

// Defaults supplies request defaults the handlers fall back to.
type Defaults struct {
	RadiusMi float64
	Limit    int
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *sunspot.Service, defaults Defaults) {
	v1 := app.Group("/api/v1")

	v1.Get("/spots/search", func(c *fiber.Ctx) error {
		req, err := parseSearchQuery(c, defaults)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap, err := service.Search(c.UserContext(), req)
		if err != nil {
			var locErr *sunspot.LocationError
			if errors.As(err, &locErr) {
				return fiber.NewError(fiber.StatusBadGateway, locErr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "search failed")
		}

		return c.JSON(snap)
	})

	v1.Get("/spots/search/stream", func(c *fiber.Ctx) error {
		req, err := parseSearchQuery(c, defaults)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		// The fiber ctx is recycled once the handler returns; the stream
		// writer must not touch it. The search runs under its own budget and
		// is cancelled by any newer search.
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			for snap := range service.SearchProgressive(context.Background(), req) {
				payload, err := json.Marshal(snap)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", payload)
				if err := w.Flush(); err != nil {
					// Client went away; the search keeps running and will be
					// superseded or time out on its own.
					return
				}
			}
		}))
		return nil
	})
}

// searchQuery holds the validated search parameters.
type searchQuery struct {
	Lat      float64 `validate:"gte=-90,lte=90"`
	Lon      float64 `validate:"gte=-180,lte=180"`
	RadiusMi float64 `validate:"gt=0"`
	Limit    int     `validate:"gte=1,lte=24"`
}

func parseSearchQuery(c *fiber.Ctx, defaults Defaults) (sunspot.SearchRequest, error) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return sunspot.SearchRequest{}, errors.New("lat and lon query parameters are required")
	}

	var q searchQuery
	var err error

	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return sunspot.SearchRequest{}, errors.New("invalid lat")
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return sunspot.SearchRequest{}, errors.New("invalid lon")
	}

	q.RadiusMi = defaults.RadiusMi
	if v := c.Query("radius_mi"); v != "" {
		if q.RadiusMi, err = strconv.ParseFloat(v, 64); err != nil {
			return sunspot.SearchRequest{}, errors.New("invalid radius_mi")
		}
	}

	q.Limit = defaults.Limit
	if v := c.Query("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil {
			return sunspot.SearchRequest{}, errors.New("invalid limit")
		}
	}

	if err := validate.Struct(q); err != nil {
		return sunspot.SearchRequest{}, err
	}

	interest, err := sunspot.ParseInterest(c.Query("interest"))
	if err != nil {
		return sunspot.SearchRequest{}, err
	}

	origin := geo.Point{Lat: q.Lat, Lon: q.Lon}
	return sunspot.SearchRequest{
		Origin:   &origin,
		RadiusMi: q.RadiusMi,
		Limit:    q.Limit,
		Category: interest,
	}, nil
}
