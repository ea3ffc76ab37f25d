package main

import (
	"os"

	kaunicmder "github.com/papercomputeco/kauni/cmd/kauni"
)

func main() {
	cmd := kaunicmder.NewKauniCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
