package main

import (
	"github.com/seaport-data/fixturewalk/cmd"
)

func main() {
	cmd.Execute()
}
