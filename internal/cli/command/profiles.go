package command

import (
	"errors"
	"fmt"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/config"
	"github.com/harshitprakash/max-education-software-sub000/internal/cli/connection"
	"github.com/harshitprakash/max-education-software-sub000/internal/cli/output"
	"github.com/harshitprakash/max-education-software-sub000/internal/storage/snapshot"
	"github.com/harshitprakash/max-education-software-sub000/internal/storage/tokenstore"
)

// profileRow is one line of "profile list".
type profileRow struct {
	Name     string `json:"name" yaml:"name"`
	BaseURL  string `json:"baseUrl" yaml:"baseUrl"`
	Current  bool   `json:"current" yaml:"current"`
	Snapshot bool   `json:"snapshot" yaml:"snapshot"`
}

func profileListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List backend profiles",
		Flags:   outputFlags(),
		Action:  profileList,
	}
}

func profileList(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	var cached []string
	if rt.KV != nil {
		if cached, err = snapshot.Profiles(c.Context, rt.KV); err != nil {
			rt.Logger.Warn("list snapshots", "error", err)
		}
	}

	var rows []profileRow
	for _, p := range rt.Profiles.List() {
		rows = append(rows, profileRow{
			Name:     p.Name,
			BaseURL:  p.BaseURL,
			Current:  p.Name == rt.Profile,
			Snapshot: slices.Contains(cached, p.Name),
		})
	}

	return render(c, output.View{Data: rows, Build: func(bool) *output.Table {
		t := output.NewTable("CURRENT", "NAME", "SERVER", "CACHED STUDENT")
		for _, r := range rows {
			mark := ""
			if r.Current {
				mark = "*"
			}
			cachedText := "no"
			if r.Snapshot {
				cachedText = "yes"
			}
			t.AddRow(mark, r.Name, r.BaseURL, cachedText)
		}
		return t
	}})
}

func profileUseCommand() *cli.Command {
	return &cli.Command{
		Name:      "use",
		Usage:     "Select the backend profile for later commands",
		ArgsUsage: "NAME",
		Action:    profileUse,
	}
}

func profileUse(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return errors.New("profile name is required")
	}

	mgr := connection.NewManager(cliConfig(c).ProfileURLs())
	if err := mgr.Connect(name); err != nil {
		return err
	}

	value := name
	if name == connection.DefaultProfile {
		value = ""
	}
	if _, err := config.Set(configPath(c), "current_profile", value); err != nil {
		return err
	}
	if err := reloadConfig(c); err != nil {
		return err
	}
	fmt.Fprintf(outWriter(c), "Using profile %q (%s).\n", name, mgr.Current().BaseURL)
	return nil
}

func profileAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Save a backend profile",
		ArgsUsage: "NAME BASE_URL",
		Action:    profileAdd,
	}
}

func profileAdd(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: maxedu profile add NAME BASE_URL")
	}
	name, baseURL := c.Args().Get(0), c.Args().Get(1)
	if name == connection.DefaultProfile {
		return fmt.Errorf("profile %q is reserved; set server.base_url instead", name)
	}
	if !tokenstore.ValidProfileName(name) {
		return fmt.Errorf("profile name %q is invalid", name)
	}

	if _, err := config.Set(configPath(c), "profiles."+name+".base_url", baseURL); err != nil {
		return err
	}
	fmt.Fprintf(outWriter(c), "Profile %q saved.\n", name)
	return nil
}

func profileRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Delete a backend profile and its cached student",
		ArgsUsage: "NAME",
		Action:    profileRemove,
	}
}

func profileRemove(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return errors.New("profile name is required")
	}
	if _, err := config.RemoveProfile(configPath(c), name); err != nil {
		return err
	}

	rt, err := GetRuntime(c)
	if err == nil && rt.KV != nil {
		if err := snapshot.NewManager(rt.KV, name).Clear(c.Context); err != nil {
			rt.Logger.Warn("clear snapshot", "profile", name, "error", err)
		}
	}
	fmt.Fprintf(outWriter(c), "Profile %q removed.\n", name)
	return reloadConfig(c)
}
