package main

import "github.com/theirongolddev/fburn/cmd"

func main() {
	cmd.Execute()
}
