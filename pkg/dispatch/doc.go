// Package dispatch maps a parsed request onto a filesystem operation.
//
// Each of GET, POST, PUT and DELETE is a method on Dispatcher that returns
// either a response to serialize or an error. Expected failures (missing
// file, wrong media type, unsupported header, unknown method) are
// *StatusError values carrying the status code to send; anything else is a
// fault the connection loop turns into 500 Internal Server Error.
package dispatch
