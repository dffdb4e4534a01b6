package main

import (
	"os"

	"clang-format-all/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:]))
}
