package main

import (
	"github.com/cyverse-de/ldap-groups/cmd"
)

func main() {
	cmd.Execute()
}
