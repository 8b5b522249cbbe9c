package main

import (
	"github.com/SUSINDRAREDDY/Job-Agent/cmd"
)

func main() {
	cmd.Execute()
}
