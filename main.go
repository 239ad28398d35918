package main

import "github.com/hpcjobs/jobsubmit/cmd"

func main() {
	cmd.Execute()
}
