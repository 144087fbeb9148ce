// Package shutdown coordinates graceful shutdown of the gateway.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(server.Shutdown)
//	err := h.Wait(ctx) // returns after SIGINT, SIGTERM, Trigger or ctx done
package shutdown
