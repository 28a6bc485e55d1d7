package main

import (
	"flag"
	"os"

	"github.com/vitrine-app/vitrine/internal/collectionservice"
)

func main() {
	// Optional build-target flag override (local | cloud-dev | cloud)
	buildTarget := flag.String("build-target", "", "Override VITRINE_BUILD_TARGET (local, cloud-dev, cloud)")
	flag.Parse()

	if err := collectionservice.Run(*buildTarget); err != nil {
		os.Exit(1)
	}
}
