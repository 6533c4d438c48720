package main

import (
	"github.com/wwolkers/librenms-inventory/cmd"
)

func main() {
	cmd.Execute()
}
