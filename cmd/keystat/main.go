package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/breezy-team/breezy-sub003/cmd/keystat/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
