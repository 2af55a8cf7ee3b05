package main

import "github.com/campussync/complaint-management/cmd"

func main() {
	cmd.Execute()
}
