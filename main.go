// main.go
package main

import "go-storefront/cli"

func main() {
	cli.Execute()
}
