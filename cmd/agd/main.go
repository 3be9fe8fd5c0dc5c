package main

import "github.com/apexdefense/agd/cmd/agd/cmd"

func main() {
	cmd.Execute()
}
