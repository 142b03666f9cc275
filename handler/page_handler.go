package handler

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the browser widget: the index page and its static
// assets.
type PageHandler struct {
	assets fs.FS
}

func NewPageHandler(assets fs.FS) *PageHandler {
	return &PageHandler{
		assets: assets,
	}
}

func (h *PageHandler) ServeIndex(c *gin.Context) {
	page, err := fs.ReadFile(h.assets, "templates/index.html")
	if err != nil {
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *PageHandler) Static() (http.FileSystem, error) {
	static, err := fs.Sub(h.assets, "static")
	if err != nil {
		return nil, err
	}
	return http.FS(static), nil
}
