package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/output"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/guard"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Log in with your student email or username",
		ArgsUsage: "IDENTIFIER",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted when omitted)",
				EnvVars: []string{"MAXEDU_PASSWORD"},
			},
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	p := newPrompter(c)

	identifier := c.Args().First()
	if identifier == "" {
		var err error
		if identifier, err = p.Line("Email or username: "); err != nil {
			return err
		}
	}
	password, err := p.flagOrSecret("password", "Password: ")
	if err != nil {
		return err
	}

	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	spinner := startSpinner(c, "Logging in...")
	result := rt.Session.Login(c.Context, identifier, password)
	if !result.Success {
		spinner.Stop()
		return errors.New(result.Error)
	}
	spinner.Success("Logged in")

	fmt.Fprintf(outWriter(c), "Welcome, %s!\n", result.User.DisplayName())
	return nil
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Log out and revoke the session",
		Action: logout,
	}
}

func logout(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	if err := rt.Session.Logout(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(outWriter(c), "Logged out.")
	return nil
}

// statusView is the output of the status command.
type statusView struct {
	Profile       string     `json:"profile" yaml:"profile"`
	BaseURL       string     `json:"baseUrl" yaml:"baseUrl"`
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	User          string     `json:"user,omitempty" yaml:"user,omitempty"`
	Email         string     `json:"email,omitempty" yaml:"email,omitempty"`
	StudentCode   string     `json:"studentCode,omitempty" yaml:"studentCode,omitempty"`
	Program       string     `json:"program,omitempty" yaml:"program,omitempty"`
	TokenExpires  *time.Time `json:"accessTokenExpires,omitempty" yaml:"accessTokenExpires,omitempty"`
	Refresh       string     `json:"refresh" yaml:"refresh"`
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the session state",
		Flags:  outputFlags(),
		Action: status,
	}
}

func status(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	state := rt.Session.State()
	refreshState, _ := rt.Dispatcher.RefreshState()
	view := statusView{
		Profile:       rt.Profile,
		BaseURL:       rt.Dispatcher.BaseURL(),
		Authenticated: state.IsAuthenticated,
		Refresh:       refreshState.String(),
	}
	if u := state.User; u != nil {
		view.User = u.DisplayName()
		view.Email = u.User.Email
		if u.Student != nil {
			view.StudentCode = u.Student.StudentCode
			view.Program = u.Student.Program
		}
	}
	// Informational only: the session is judged by token presence.
	if exp, ok := domain.AccessTokenExpiry(rt.Tokens.GetAccessToken()); ok {
		view.TokenExpires = &exp
	}

	return render(c, output.View{Data: view, Build: func(bool) *output.Table {
		t := output.NewTable("FIELD", "VALUE")
		t.AddRow("Profile", view.Profile)
		t.AddRow("Server", view.BaseURL)
		if !view.Authenticated {
			t.AddRow("Status", "not logged in")
			return t
		}
		t.AddRow("Status", "logged in")
		t.AddRow("User", output.Cell(view.User))
		t.AddRow("Email", output.Cell(view.Email))
		t.AddRow("Student code", output.Cell(view.StudentCode))
		t.AddRow("Program", output.Cell(view.Program))
		t.AddRow("Access token", expiryText(view.TokenExpires, time.Now()))
		t.AddRow("Refresh", view.Refresh)
		return t
	}})
}

// expiryText describes an access token expiry relative to now.
func expiryText(exp *time.Time, now time.Time) string {
	switch {
	case exp == nil:
		return "-"
	case !exp.After(now):
		return "expired (renewed on next request)"
	default:
		return fmt.Sprintf("expires in %s", exp.Sub(now).Round(time.Second))
	}
}

// RefreshCommand returns the refresh command.
func RefreshCommand() *cli.Command {
	return &cli.Command{
		Name:   "refresh",
		Usage:  "Renew the access token now",
		Action: refresh,
	}
}

func refresh(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	spinner := startSpinner(c, "Renewing session...")
	tokens, err := rt.Dispatcher.RefreshToken(c.Context)
	if err != nil {
		spinner.Fail("Session not renewed")
		return err
	}
	spinner.Success("Session renewed")
	rt.Session.Refresh(c.Context)

	if exp, ok := domain.AccessTokenExpiry(tokens.AccessToken); ok {
		fmt.Fprintf(outWriter(c), "Access token %s.\n", expiryText(&exp, time.Now()))
	} else {
		fmt.Fprintln(outWriter(c), "Access token renewed.")
	}
	return nil
}

// PasswdCommand returns the password change command.
func PasswdCommand() *cli.Command {
	return &cli.Command{
		Name:  "passwd",
		Usage: "Change your password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "current", Usage: "Current password (prompted when omitted)"},
			&cli.StringFlag{Name: "new-password", Usage: "New password (prompted when omitted)"},
			&cli.StringFlag{Name: "confirm-password", Usage: "New password again (prompted when omitted)"},
		},
		Action: guarded(passwd),
	}
}

func passwd(c *cli.Context, rt *Runtime) error {
	p := newPrompter(c)

	current, err := p.flagOrSecret("current", "Current password: ")
	if err != nil {
		return err
	}
	next, err := p.flagOrSecret("new-password", "New password: ")
	if err != nil {
		return err
	}
	confirm, err := p.flagOrSecret("confirm-password", "Confirm new password: ")
	if err != nil {
		return err
	}

	message, err := rt.Auth.ChangePassword(c.Context, current, next, confirm)
	if err != nil {
		return err
	}
	fmt.Fprintln(outWriter(c), message)
	return nil
}

// guarded runs action only when the session guard lets the view render.
func guarded(action func(*cli.Context, *Runtime) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := GetRuntime(c)
		if err != nil {
			return err
		}
		if err := guard.Require(rt.Session.State()); err != nil {
			return err
		}
		return action(c, rt)
	}
}
