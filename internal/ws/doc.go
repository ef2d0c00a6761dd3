// Package ws pushes diagnostic reports to rendering clients over WebSocket.
//
// The hub broadcasts the full report snapshot on a fixed interval and
// immediately on connect, so a renderer always has current tables without
// polling the JSON API. Clients that cannot keep up (full send buffer) are
// disconnected rather than allowed to stall the broadcast loop.
package ws
