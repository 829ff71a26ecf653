package main

import (
	"flag"

	"github.com/acendan/rx7sim/internal/sim"
)

func main() {
	assets := flag.String("assets", "assets/audio", "directory with engine sound banks")
	flag.Parse()
	sim.RunDesktop(*assets)
}
