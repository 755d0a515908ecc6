// Package main is the entry point for the kplay application.
package main

import (
	"github.com/kplay-cli/kplay/cmd"
	"github.com/kplay-cli/kplay/config"
	"github.com/kplay-cli/kplay/internal/sweep"
	"github.com/kplay-cli/kplay/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// prune sockets left by crashed sessions
	sweep.CollectGarbage()

	cmd.Execute()
}
