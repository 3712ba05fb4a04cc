package main

import (
	"os"

	"github.com/danielgalbraith/DepTrain/app"
	"github.com/danielgalbraith/DepTrain/util/logging"

	"github.com/gonuts/commander"
)

func main() {
	logging.SetupLogging()
	log := logging.NewLogger("main")

	cmd := &commander.Command{
		UsageLine: os.Args[0],
		Short:     "trains and runs an arc-eager dependency parser",
	}
	cmd.Subcommands = app.AllCommands()

	if err := cmd.Dispatch(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
