// Command netlab serves the virtual network and IoT lab.
//
//	@title			netlab API
//	@version		0.1.0
//	@description	Virtual network and IoT lab: topology editing, port-aware wiring, sensor simulation and a console tutor.
//	@BasePath		/api/v1
package main

//go:generate swag init -d ../.. -g cmd/netlab/main.go -o ../../docs --parseInternal

import (
	"fmt"
	"os"

	_ "github.com/danmudi/netlab/docs"
	"github.com/danmudi/netlab/internal/version"
)

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		runServe(args)
	case "backup":
		runBackup(args)
	case "restore":
		runRestore(args)
	case "version":
		fmt.Println(version.Info())
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		fmt.Fprintln(os.Stderr, "usage: netlab [serve|backup|restore|version] [flags]")
		os.Exit(2)
	}
}
