package localserver

import (
	"encoding/json"
	"fmt"
	"io"
)

// Actions are the operations the control socket can trigger. Nil actions
// answer "unsupported".
type Actions struct {
	// Status returns a JSON-encodable description of the gateway.
	Status func() any
	// Reload re-reads the configuration.
	Reload func() error
	// Stop starts a graceful shutdown. It must not block.
	Stop func()
}

// Handler executes control commands.
type Handler struct {
	actions Actions
}

// NewHandler creates a Handler.
func NewHandler(actions Actions) *Handler {
	return &Handler{actions: actions}
}

// Execute runs cmd and writes the reply to w.
func (h *Handler) Execute(w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "status":
		return h.handleStatus(w)
	case "reload":
		return h.handleReload(w)
	case "stop":
		return h.handleStop(w)
	case "":
		_, err := io.WriteString(w, "error: empty command\n")
		return err
	default:
		_, err := fmt.Fprintf(w, "error: unknown command %q\n", cmd)
		return err
	}
}

func (h *Handler) handleStatus(w io.Writer) error {
	if h.actions.Status == nil {
		return unsupported(w, "status")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(h.actions.Status())
}

func (h *Handler) handleReload(w io.Writer) error {
	if h.actions.Reload == nil {
		return unsupported(w, "reload")
	}
	if err := h.actions.Reload(); err != nil {
		_, werr := fmt.Fprintf(w, "error: %v\n", err)
		return werr
	}
	_, err := io.WriteString(w, "ok\n")
	return err
}

func (h *Handler) handleStop(w io.Writer) error {
	if h.actions.Stop == nil {
		return unsupported(w, "stop")
	}
	if _, err := io.WriteString(w, "ok\n"); err != nil {
		return err
	}
	h.actions.Stop()
	return nil
}

func unsupported(w io.Writer, cmd string) error {
	_, err := fmt.Fprintf(w, "error: %s is not supported\n", cmd)
	return err
}
