package main

import "github.com/tom-bleher/music-analytics/cmd"

func main() {
	cmd.Execute()
}
