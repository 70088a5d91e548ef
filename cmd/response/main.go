// Command response plots normalized optical and resistive sensor responses
// against the gas exposure schedule.
package main

import "github.com/banshee-data/response.report/internal/cli"

func main() {
	cli.Execute()
}
