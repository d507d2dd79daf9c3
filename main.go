package main

import "github.com/tomaslejdung/godesk/cmd"

func main() {
	cmd.Execute()
}
