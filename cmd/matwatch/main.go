package main

import (
	"os"

	"horse.fit/matwatch/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
