package main

import "github.com/ussdlab/journey-console/cmd"

func main() {
	cmd.Execute()
}
