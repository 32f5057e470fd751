/*
Package ws implements the frame level of the WebSocket protocol as specified
in RFC 6455, sized for constrained network stacks.

The package is stateless: it encodes and decodes frame headers, applies the
masking cipher, computes handshake accept keys and checks upgrade headers.
Connection handling (incremental receive, control frames, heartbeat) lives in
the wsconn subpackage.

Headers could be encoded into caller provided memory:

  var buf [ws.MaxHeaderSize]byte
  n := ws.PutHeader(buf[:], ws.Header{
	  Fin:    true,
	  OpCode: ws.OpText,
	  Length: int64(len(payload)),
  })
  conn.Write(buf[:n])

Or written to the stream:

  if err := ws.WriteFrame(conn, ws.NewTextFrame("hello")); err != nil {
	  // handle err
  }

Decoding works on accumulated bytes, which makes it usable with
non-blocking transports:

  h, n, err := ws.DecodeHeader(acc)
  if err == ws.ErrHeaderShort {
	  // need more bytes
  }

Note that payload lengths are limited to 32 bits. A header declaring a
64-bit length with non-zero upper half is reported as
ErrHeaderLengthTooLarge.
*/
package ws
