// Package wire implements the client side of the HTTP/1.1 wire
// protocol: request serialization, response parsing, and body framing
// over a [conn.Conn], using only caller-supplied buffers.
//
// A [Request] is rendered onto a connection with [Request.Write]. The
// response is then parsed with [ReadResponse], which fills the caller's
// receive buffer with the status line and header block and exposes the
// body as a lazy, single-pass [BodyReader] that terminates correctly
// under fixed-length, chunked, and read-to-close framing.
//
// Parsed header names and values are views into the receive buffer and
// remain valid only as long as that buffer does.
package wire
