package main

import (
	"github.com/ravensec/xssentinel/cmd"
	"github.com/ravensec/xssentinel/pkg/config"
)

func main() {
	config.LoadConfig()
	cmd.Execute()
}
