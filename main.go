package main

import "dataproc-bridge/cmd"

func main() {
	cmd.Execute()
}
