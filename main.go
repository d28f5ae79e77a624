package main

import (
	"os"

	"github.com/GoSiteSettings/GoSiteSettings/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
