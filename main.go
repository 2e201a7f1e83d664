package main

import "github.com/elevatic20/worktime-app/cmd"

func main() {
	cmd.Execute()
}
