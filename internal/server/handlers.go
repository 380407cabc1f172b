package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/navrouter/internal/bridge"
	"github.com/vyrodovalexey/navrouter/internal/navigation"
	"github.com/vyrodovalexey/navrouter/internal/observability"
	"github.com/vyrodovalexey/navrouter/internal/pattern"
	"github.com/vyrodovalexey/navrouter/internal/router"
	"github.com/vyrodovalexey/navrouter/internal/util"
)

// MatchResponse is the body of GET /api/match.
type MatchResponse struct {
	Path     string            `json:"path"`
	URL      string            `json:"url,omitempty"`
	IsExact  bool              `json:"isExact"`
	Params   map[string]string `json:"params"`
	View     string            `json:"view"`
	Pathname string            `json:"pathname"`
}

// RouteInfo describes one installed route.
type RouteInfo struct {
	Path   string        `json:"path"`
	Exact  bool          `json:"exact"`
	View   string        `json:"view"`
	Keys   []pattern.Key `json:"keys"`
	Regexp string        `json:"regexp"`
}

// RoutesResponse is the body of GET /api/routes.
type RoutesResponse struct {
	Context     string      `json:"context"`
	Fingerprint string      `json:"fingerprint"`
	Routes      []RouteInfo `json:"routes"`
}

// HrefResponse is the body of GET /api/href.
type HrefResponse struct {
	To   string `json:"to"`
	Href string `json:"href"`
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func abortError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}

// handleMatch resolves an external pathname under the base context. An
// unmatched pathname answers 404 with the not-found sentinel and view.
func (s *Server) handleMatch(c *gin.Context) {
	pathname := c.Query("pathname")
	if err := util.ValidatePathname(pathname); err != nil {
		abortError(c, http.StatusBadRequest, err)
		return
	}

	table := s.Table()
	internal := navigation.StripContext(pathname, table.BaseContext)

	result := s.matcher.Match(c.Request.Context(), internal)
	if result == nil {
		c.JSON(http.StatusNotFound, MatchResponse{
			Path:     router.NotFoundPath,
			Params:   map[string]string{},
			View:     bridge.ViewName(table.Views.NotFound()),
			Pathname: pathname,
		})
		return
	}

	c.JSON(http.StatusOK, MatchResponse{
		Path:     result.Path,
		URL:      result.URL,
		IsExact:  result.IsExact,
		Params:   result.Params,
		View:     bridge.ViewName(table.Views.Select(result.Path)),
		Pathname: pathname,
	})
}

func (s *Server) handleRoutes(c *gin.Context) {
	table := s.Table()
	routes := s.matcher.Routes()

	infos := make([]RouteInfo, 0, len(routes))
	for _, route := range routes {
		compiled, err := s.compiler.Compile(route.Path, pattern.Options{End: route.Exact})
		if err != nil {
			// Installed routes were compiled on install.
			s.logger.WithContext(c.Request.Context()).Error("route compilation failed",
				observability.String("path", route.Path),
				observability.Error(err))
			abortError(c, http.StatusInternalServerError, err)
			return
		}

		keys := compiled.Keys
		if keys == nil {
			keys = []pattern.Key{}
		}
		infos = append(infos, RouteInfo{
			Path:   route.Path,
			Exact:  route.Exact,
			View:   bridge.ViewName(route.View),
			Keys:   keys,
			Regexp: compiled.String(),
		})
	}

	c.JSON(http.StatusOK, RoutesResponse{
		Context:     table.BaseContext,
		Fingerprint: s.matcher.Fingerprint(),
		Routes:      infos,
	})
}

// handleHref renders the external href of an internal pathname.
func (s *Server) handleHref(c *gin.Context) {
	to := c.Query("href")
	if to == "" {
		abortError(c, http.StatusBadRequest, errors.New("href query parameter is required"))
		return
	}

	pathname, err := util.PathnameFromHref(to)
	if err != nil {
		abortError(c, http.StatusBadRequest, err)
		return
	}

	link := navigation.NavLink{To: pathname}
	c.JSON(http.StatusOK, HrefResponse{
		To:   pathname,
		Href: link.Href(s.Table().BaseContext),
	})
}
