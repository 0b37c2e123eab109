package http

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/markermap/internal/core/domain"
	"github.com/samirrijal/markermap/internal/core/usecases"
)

// markerRequest is the body of create and update calls.
type markerRequest struct {
	Name     string           `json:"name"`
	Position *domain.Position `json:"position"`
}

// parse reads the body and returns a message describing what is wrong with it.
func (r *markerRequest) parse(c *fiber.Ctx) string {
	if err := c.BodyParser(r); err != nil {
		return "invalid request body: " + err.Error()
	}
	if r.Position == nil {
		return "position is required as [lat, lng]"
	}
	if !r.Position.Valid() {
		return "position out of range: " + r.Position.String()
	}
	return ""
}

// MapConfigHandler returns the tile layer and initial view for the map page.
func MapConfigHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Map)
	}
}

// ListMarkersHandler returns markers whose name contains q, paginated.
func ListMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := c.Query("q")
		if len(q) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		markers := deps.Markers.List(c.UserContext(), q)
		offset, limit := parsePagination(c, 100, 500)

		pg := Pagination{Offset: offset, Limit: limit, Total: len(markers)}
		extra := url.Values{}
		if q != "" {
			extra.Set("q", q)
		}
		SetLinkHeaders(c, pg, extra)
		return c.JSON(PaginatedResponse{Data: paginate(markers, offset, limit), Pagination: pg})
	}
}

// GetMarkerHandler returns a single marker by id.
func GetMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := deps.Markers.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	}
}

// CreateMarkerHandler adds a marker. A blank name adds nothing and answers 204.
func CreateMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req markerRequest
		if msg := req.parse(c); msg != "" {
			return errBadRequest(c, msg)
		}

		m, err := deps.Markers.Add(c.UserContext(), req.Name, *req.Position)
		if err != nil {
			return serviceError(c, err)
		}
		if m == nil {
			return c.SendStatus(fiber.StatusNoContent)
		}
		c.Location("/v1/markers/" + m.ID)
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// UpdateMarkerHandler replaces a marker's name and position. Like the edit
// popup, it accepts an empty name.
func UpdateMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req markerRequest
		if msg := req.parse(c); msg != "" {
			return errBadRequest(c, msg)
		}

		m, err := deps.Markers.Update(c.UserContext(), c.Params("id"), req.Name, *req.Position)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	}
}

// DeleteMarkerHandler removes a marker.
func DeleteMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Markers.Delete(c.UserContext(), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SaveMarkersHandler persists the collection and returns the acknowledgement.
func SaveMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Markers.Save(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		LoggerFromCtx(c.UserContext()).Info("markers saved", "count", res.Count, "bytes", res.Bytes)
		return c.JSON(res)
	}
}

// BoundsHandler returns the box enclosing every marker.
func BoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, ok := deps.Markers.Bounds(c.UserContext())
		if !ok {
			return errNotFound(c, "no markers")
		}
		return c.JSON(fiber.Map{
			"bounds": b,
			"center": b.Center(),
		})
	}
}

// queryFloat parses a float query parameter. A missing parameter yields def,
// or an error when def is nil.
func queryFloat(c *fiber.Ctx, name string, def *float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		if def == nil {
			return 0, fmt.Errorf("%s is required", name)
		}
		return *def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return v, nil
}

// NearbyMarkersHandler returns markers within radius meters of a point.
func NearbyMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := queryFloat(c, "lat", nil)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lng, err := queryFloat(c, "lng", nil)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		defRadius := 1000.0
		radius, err := queryFloat(c, "radius", &defRadius)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		pos := domain.Position{Lat: lat, Lng: lng}
		limit := c.QueryInt("limit", 20)

		if !(radius > 0 && radius <= 50000) {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}

		out, err := deps.Markers.Nearby(c.UserContext(), pos, radius, limit)
		if err != nil {
			return serviceError(c, err)
		}
		if out == nil {
			out = []usecases.NearbyMarker{}
		}
		return c.JSON(out)
	}
}
