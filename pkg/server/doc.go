// Package server accepts TCP connections and runs one request/response
// exchange on each.
//
// Every connection is handled on its own goroutine: the request is framed
// with package http, executed by a Dispatcher, and the single response is
// written back before the connection is closed. Connections share no
// mutable state.
//
// Example usage:
//
//	d := dispatch.New(dispatch.Config{FS: diskfs.New(".")})
//	srv := server.New(server.Config{Addr: "localhost:3001", Dispatcher: d})
//	go srv.ListenAndServe()
//	defer srv.Shutdown(ctx)
package server
