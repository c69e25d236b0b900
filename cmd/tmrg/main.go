package main

import "github.com/OpenTraceLab/OpenTraceTMR/cmd/tmrg/cmd"

func main() {
	cmd.Execute()
}
