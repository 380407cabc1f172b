// Package bridge connects browser tabs to server-side navigation
// coordinators over a websocket.
//
// Each connection is a session with its own navigation.Coordinator. The
// browser reports its location with an "init" frame, forwards back/forward
// moves as "popstate" frames and asks for in-app navigation with
// "navigate" frames. The server answers with "pushState" frames, which the
// browser applies with history.pushState, and "route" frames describing the
// route to render.
package bridge
