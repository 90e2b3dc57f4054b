package cmd

const DESCRIPTION = `
namaadhu keeps track of the prayer times of an island in the
Maldives. A background daemon follows the selected island's
timetable and always knows the current and the upcoming prayer;
the other commands ask it over JSON-RPC.
`

const (
	DaemonDescription = `The daemon command starts the background service. It
serves JSON-RPC on NAMAADHU_ADDR, keeps the selected island's
schedule current and, when NAMAADHU_MQTT_BROKER is set, publishes
every prayer change to MQTT.

Example:
        namaadhu daemon
        namaadhu daemon --fixture --addr 127.0.0.1:7000

`
	IslandsDescription = `The islands command lists the islands known to the daemon,
optionally filtered by a search term matched against the atoll
and island names.

Example:
        namaadhu islands
        namaadhu islands hulhu

`
	SelectDescription = `The select command makes the daemon track an island. Use
"namaadhu islands" to find its id.

Example:
        namaadhu select 2

`
	TimesDescription = `The times command prints the six prayer times of a day,
for the selected island unless --island is given.

Example:
        namaadhu times
        namaadhu times --island 3 --date 2025-04-10

`
	NextDescription = `The next command prints the current and the upcoming
prayer of the selected island.

Example:
        namaadhu next

`
	WatchDescription = `The watch command follows the selected island live,
counting down to each upcoming prayer until interrupted.

Example:
        namaadhu watch

`
)

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`
