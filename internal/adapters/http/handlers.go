package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

// queryFloat parses a required float query parameter. The second return is
// false when the parameter is missing or unparseable.
func queryFloat(c *fiber.Ctx, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// viewportResponse is the bounding-box payload.
type viewportResponse struct {
	Items []domain.GeoPoint `json:"items"`
	Count int               `json:"count"`
}

// BoundingBoxHandler returns the sparse-index geopoints inside a box.
func BoundingBoxHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		latMin, ok1 := queryFloat(c, "latMin")
		lonMin, ok2 := queryFloat(c, "lonMin")
		latMax, ok3 := queryFloat(c, "latMax")
		lonMax, ok4 := queryFloat(c, "lonMax")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return errBadRequest(c, "latMin, lonMin, latMax and lonMax are required")
		}

		items, err := deps.Viewport.Viewport(c.UserContext(), domain.Bounds{
			MinLat: latMin, MinLon: lonMin, MaxLat: latMax, MaxLon: lonMax,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		if items == nil {
			items = []domain.GeoPoint{}
		}
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(viewportResponse{Items: items, Count: len(items)})
	}
}

// AssessRouteHandler scores the straight-line flight between two points.
func AssessRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		latStart, ok1 := queryFloat(c, "latStart")
		lonStart, ok2 := queryFloat(c, "lonStart")
		latEnd, ok3 := queryFloat(c, "latEnd")
		lonEnd, ok4 := queryFloat(c, "lonEnd")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return errBadRequest(c, "latStart, lonStart, latEnd and lonEnd are required")
		}

		assessment, err := deps.Assess.Assess(c.UserContext(),
			domain.Point{Lat: latStart, Lon: lonStart},
			domain.Point{Lat: latEnd, Lon: lonEnd},
		)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(assessment)
	}
}

// optimiseRequest is the submit body. Pointers distinguish missing fields
// from zero coordinates.
type optimiseRequest struct {
	StartPoint *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"startPoint"`
	EndPoint *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"endPoint"`
}

// OptimiseRouteHandler accepts an asynchronous optimization job.
func OptimiseRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req optimiseRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if req.StartPoint == nil || req.EndPoint == nil ||
			req.StartPoint.Lat == nil || req.StartPoint.Lon == nil ||
			req.EndPoint.Lat == nil || req.EndPoint.Lon == nil {
			return errBadRequest(c, "startPoint and endPoint with lat and lon are required")
		}

		rec, err := deps.Routes.Submit(c.UserContext(),
			domain.Point{Lat: *req.StartPoint.Lat, Lon: *req.StartPoint.Lon},
			domain.Point{Lat: *req.EndPoint.Lat, Lon: *req.EndPoint.Lon},
		)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "route optimisation accepted",
			"routeId": rec.ID,
		})
	}
}

// GetRouteHandler returns a stored optimization record.
func GetRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "route id is required")
		}
		rec, err := deps.Routes.Get(c.UserContext(), id)
		if err != nil {
			return errNotFound(c, "route not found")
		}
		return c.JSON(rec)
	}
}
