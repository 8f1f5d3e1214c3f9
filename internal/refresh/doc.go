// Package refresh carries re-fetch requests from the query server to the
// scanner over a local UDP socket.
//
// # Architecture
//
// The server and the scanner are separate processes with separate
// lifetimes. When a visitor opens an archived record, the server asks the
// scanner to re-fetch it so stored counters catch up with the platform.
// That request is advisory: nothing in the serving path may ever block on
// the scanner, and a lost request costs nothing because the next scan
// pass re-covers the item anyway.
//
// Design decision: UDP datagrams with a JSON payload rather than an RPC
// framework because:
//  1. The semantics wanted are exactly what a datagram gives: one-way,
//     at-most-once, no reply, no connection state
//  2. The scanner may not be running; a send must succeed and vanish
//     rather than error or queue
//  3. A request is a two-field message between processes on one host
//
// # Components
//
//   - Requester: used by the server; fire-and-forget Request calls
//   - Listener: owned by the scanner; decodes datagrams onto a bounded
//     channel, dropping when the scanner is behind
package refresh
