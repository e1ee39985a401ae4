package main

import "github.com/ShawrmaM8/Tracktion/cmd/trk/root"

func main() {
	root.Execute()
}
