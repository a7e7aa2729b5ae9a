package main

import (
	"fmt"
	"os"

	uierrs "github.com/cppforlife/go-cli-ui/errors"
)

func main() {
	command := NewSaladCmd()

	err := command.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "salad: Error: %s\n", uierrs.NewMultiLineError(err))
		os.Exit(1)
	}
}
