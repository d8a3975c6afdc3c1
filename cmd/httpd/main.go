package main

import "github.com/raphaelreyna/httpd/cmd/httpd/cmd"

func main() {
	cmd.Execute()
}
