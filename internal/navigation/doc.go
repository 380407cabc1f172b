// Package navigation keeps the current route of an application in sync
// with a browser history.
//
// A Coordinator is driven by three signals: Start installs the routes and
// resolves the initial pathname, PopState follows back/forward moves of the
// history, and Navigate performs in-app navigation, pushing the new
// pathname onto the history. Observers registered with Subscribe are told
// about every change of the current route.
//
// Pathnames handed to the coordinator by the history are external: they
// carry the base context (e.g. "/settings"). Routes are matched against the
// internal pathname with the context stripped.
package navigation
