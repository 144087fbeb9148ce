package localserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// Send writes one command to the control socket at path and returns the
// reply.
func Send(ctx context.Context, path, command string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return "", fmt.Errorf("no gateway is listening on %s: %w", path, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(commandTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	conn.SetDeadline(deadline)

	if _, err := io.WriteString(conn, strings.TrimSpace(command)+"\n"); err != nil {
		return "", err
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return "", err
	}
	return string(reply), nil
}
