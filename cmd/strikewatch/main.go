package main

import (
	"os"

	"strikewatch/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
