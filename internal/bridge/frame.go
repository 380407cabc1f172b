package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/vyrodovalexey/navrouter/internal/navigation"
	"github.com/vyrodovalexey/navrouter/internal/util"
)

// Client to server frame types.
const (
	FrameInit     = "init"
	FramePopState = "popstate"
	FrameNavigate = "navigate"
)

// Server to client frame types.
const (
	FramePushState = "pushState"
	FrameRoute     = "route"
	FrameError     = "error"
)

// ClientFrame is a frame sent by the browser.
type ClientFrame struct {
	Type     string `json:"type"`
	Pathname string `json:"pathname,omitempty"`
	Href     string `json:"href,omitempty"`
}

// DecodeClientFrame parses and validates a client frame.
func DecodeClientFrame(data []byte) (ClientFrame, error) {
	var frame ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return ClientFrame{}, fmt.Errorf("%w: malformed frame: %w", util.ErrInvalidInput, err)
	}

	switch frame.Type {
	case FrameInit, FramePopState:
		if err := util.ValidatePathname(frame.Pathname); err != nil {
			return ClientFrame{}, err
		}
	case FrameNavigate:
		if frame.Href == "" {
			return ClientFrame{}, fmt.Errorf("%w: navigate frame requires href", util.ErrInvalidInput)
		}
	default:
		return ClientFrame{}, fmt.Errorf("%w: unknown frame type %q", util.ErrInvalidInput, frame.Type)
	}
	return frame, nil
}

// PushStateFrame asks the browser to push a history entry.
type PushStateFrame struct {
	Type     string           `json:"type"`
	Pathname string           `json:"pathname"`
	State    navigation.State `json:"state"`
}

// RouteFrame tells the browser which route to render.
type RouteFrame struct {
	Type     string            `json:"type"`
	Path     string            `json:"path"`
	Params   map[string]string `json:"params"`
	Pathname string            `json:"pathname"`
	View     string            `json:"view"`
}

// ErrorFrame reports a rejected client frame.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newRouteFrame(route navigation.CurrentRoute, view any) RouteFrame {
	params := route.Params
	if params == nil {
		params = map[string]string{}
	}
	return RouteFrame{
		Type:     FrameRoute,
		Path:     route.Path,
		Params:   params,
		Pathname: route.Pathname,
		View:     ViewName(view),
	}
}

// ViewName renders a view as the name sent to the browser. NopView and nil
// render as "".
func ViewName(view any) string {
	switch v := view.(type) {
	case nil, navigation.NopView:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
