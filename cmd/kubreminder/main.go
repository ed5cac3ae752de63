package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/ilyalavrinov/kubreminder/internal/kubreminder"
)

var cfgFilename = flag.String("config", "kubreminder.cfg", "optional gcfg file; environment variables override it")

func main() {
	flag.Parse()

	log.Print("Starting my bot")

	err := kubreminder.Start(*cfgFilename)
	if err != nil {
		log.Fatalf("My bot could not be started due to error: %s", err)
	}

	log.Print("My bot has stopped working")
}
