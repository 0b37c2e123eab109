package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/markermap/internal/core/domain"
)

// EditorView is the editor state plus the values the page derives from it.
type EditorView struct {
	domain.EditorState
	Visible        []domain.Marker `json:"visible"`
	PanningEnabled bool            `json:"panning_enabled"`
}

func newEditorView(s domain.EditorState) EditorView {
	visible := s.Visible()
	if visible == nil {
		visible = []domain.Marker{}
	}
	if s.Markers == nil {
		s.Markers = []domain.Marker{}
	}
	return EditorView{EditorState: s, Visible: visible, PanningEnabled: s.PanningEnabled()}
}

// GetEditorHandler returns the current editor state.
func GetEditorHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(newEditorView(deps.Markers.State()))
	}
}

// EditorEventHandler applies one editor event. Rejected events answer with
// the error and leave the state unchanged.
func EditorEventHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ev domain.Event
		if err := c.BodyParser(&ev); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if ev.Type == "" {
			return errBadRequest(c, "type is required")
		}

		s, err := deps.Markers.Dispatch(c.UserContext(), ev)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(newEditorView(s))
	}
}
