// Package localserver provides the control socket of a running gateway.
//
// The server listens on a Unix domain socket that only the owner can open.
// A client writes one command line and reads the reply until the server
// closes the connection:
//
//   - status: session and gateway state as JSON
//   - reload: re-read the configuration
//   - stop: shut the gateway down gracefully
//
// Access is controlled by file system permissions; no credentials travel
// over the socket.
package localserver
