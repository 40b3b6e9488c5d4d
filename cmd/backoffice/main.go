// Command backoffice serves the logistics back-office list views.
package main

import (
	"os"

	"github.com/freightdesk/backoffice/pkg/cli"
)

func main() {
	cmd := cli.NewRootCommand(cli.Options{
		Name:        "backoffice",
		Description: "Logistics back office: searchable, filterable, paginated list views",
		ConfigPath:  os.Getenv("BACKOFFICE_CONFIG_FILE"),
	})
	cli.Execute(cmd)
}
