package main

import "github.com/KaramelBytes/fitcorr/cmd"

func main() {
	cmd.Execute()
}
