package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`
	Store   string `help:"Preference store backend override: file, sqlite, memory." enum:",file,sqlite,memory" default:""`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version VersionCmd `cmd:"" help:"Print version."`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration."`
	Block   BlockCmd   `cmd:"" help:"Manage blocked companies."`
	Search  SearchCmd  `cmd:"" help:"Build and manage saved LinkedIn searches."`
	Filter  FilterCmd  `cmd:"" help:"Hide blocked companies from a saved or fetched jobs page."`
	Watch   WatchCmd   `cmd:"" help:"Follow a LinkedIn search and print new, unblocked jobs."`
	Remind  RemindCmd  `cmd:"" help:"Periodic reminders to check for jobs."`
	Proxies ProxiesCmd `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
