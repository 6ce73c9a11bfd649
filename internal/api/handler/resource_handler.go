package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/sportsfed/console-gateway/internal/upstream"
)

// ResourceHandler proxies protected console views to the upstream federation
// API through the request pipeline. The pipeline injects the bearer token and
// normalises failures; here the envelope is passed through as-is so the UI
// sees exactly the upstream data/meta shape.
type ResourceHandler struct {
	api *upstream.Client
}

func NewResourceHandler(api *upstream.Client) *ResourceHandler {
	return &ResourceHandler{api: api}
}

type proxyResponse struct {
	Data json.RawMessage `json:"data"`
	Meta json.RawMessage `json:"meta,omitempty"`
}

// List forwards a collection fetch, preserving the caller's query string
// (pagination, filters).
func (h *ResourceHandler) List(upstreamPath string) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := upstreamPath
		if q := c.QueryString(); q != "" {
			path += "?" + q
		}
		env, err := h.api.Do(c.Request().Context(), http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, proxyResponse{Data: env.Data, Meta: env.Meta})
	}
}

// Get forwards a single-resource fetch by path id.
func (h *ResourceHandler) Get(upstreamPath string) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := upstreamPath + "/" + url.PathEscape(c.Param("id"))
		env, err := h.api.Do(c.Request().Context(), http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, proxyResponse{Data: env.Data, Meta: env.Meta})
	}
}
