package main

import "incidentService/cmd"

func main() {
	cmd.Execute()
}
