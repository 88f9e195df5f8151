package main

import (
	"github.com/finsight-ai/finsight/internal/cli"
)

func main() {
	cli.Run()
}
