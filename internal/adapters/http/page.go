package http

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/markermap/internal/pkg/config"
)

//go:embed web/index.html
var webFS embed.FS

var pageTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

type pageData struct {
	Title string
	Map   config.MapConfig
}

// PageHandler renders the map editor page. The page talks to the editor
// endpoints and never keeps marker state of its own.
func PageHandler(deps *Dependencies) fiber.Handler {
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, pageData{Title: "Marker Map", Map: deps.Map})
	if err != nil {
		panic("render map page: " + err.Error())
	}
	page := buf.Bytes()

	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(page)
	}
}
