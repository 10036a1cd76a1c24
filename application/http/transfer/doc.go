// Package transfer implements the sending side of the HTTP/1.1 chunked transfer coding.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9112#section-7.1
//
// - https://datatracker.ietf.org/doc/html/rfc7230#section-4.1
package transfer
