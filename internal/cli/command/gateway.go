package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/harshitprakash/max-education-software-sub000/internal/server/localserver"
)

// GatewayCommand returns the gateway control subcommand group.
func GatewayCommand() *cli.Command {
	return &cli.Command{
		Name:  "gateway",
		Usage: "Control a running gateway through its control socket",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "socket",
				Usage: "Control socket path (default from gateway.control_socket)",
			},
		},
		Subcommands: []*cli.Command{
			{Name: "status", Usage: "Show the gateway and session state", Action: gatewayAction("status")},
			{Name: "reload", Usage: "Re-read the configuration", Action: gatewayAction("reload")},
			{Name: "stop", Usage: "Shut the gateway down", Action: gatewayAction("stop")},
		},
	}
}

func gatewayAction(cmd string) cli.ActionFunc {
	return func(c *cli.Context) error {
		path := c.String("socket")
		if path == "" {
			path = cliConfig(c).ControlSocket(configPath(c))
		}
		if path == "" {
			return errors.New("the gateway control socket is disabled (gateway.control_socket is \"-\")")
		}

		ctx, cancel := context.WithTimeout(c.Context, 15*time.Second)
		defer cancel()

		reply, err := localserver.Send(ctx, path, cmd)
		if err != nil {
			return err
		}
		if msg, ok := strings.CutPrefix(reply, "error: "); ok {
			return errors.New(strings.TrimSpace(msg))
		}
		fmt.Fprint(outWriter(c), reply)
		return nil
	}
}
