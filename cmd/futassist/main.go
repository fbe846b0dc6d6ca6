package main

import (
	"futassist/cmd/futassist/commands"
	"futassist/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
