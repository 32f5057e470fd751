/*
Package wsconn drives WebSocket connections over non-blocking byte
transports.

A Conn owns one peer socket. It accumulates frame headers across as many
Handle calls as the transport needs to deliver them, reads payloads with an
inactivity timeout, answers control frames and reports every received frame
to a Handler. Heartbeat probing is driven by Tick.

Conns are not safe for concurrent use. The intended model is a single
goroutine polling many connections, which Loop implements:

  loop := wsconn.NewLoop(nil)

  conn := wsconn.NewConn(wsconn.NewNetTransport(nc), wsconn.RoleServer, handler, nil)
  if err := conn.HeaderDone(); err != nil {
	  // handle err
  }
  conn.EnableHeartbeat(15*time.Second, 3*time.Second, 2)
  loop.Add(conn)

  go loop.Run(ctx, time.Millisecond)

The HTTP upgrade itself is made by the caller; see ws.WriteUpgradeResponse.
*/
package wsconn
