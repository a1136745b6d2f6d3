package main

import "labscrub/cmd"

func main() {
	cmd.Execute()
}
