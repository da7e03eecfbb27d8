package main

import "github.com/proofofimpact/poi/cmd"

func main() {
	cmd.Execute()
}
