package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/voluzi/tegrastats-exporter/cmd/tegra-exporter/cmd"
)

func main() {
	cmd.Execute()
}
