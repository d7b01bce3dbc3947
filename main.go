package main

import (
	"fmt"
	"os"
	"strings"

	"bumpboard/service"
)

// CliVersion is reported by the version command.
const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the command line to the matching subcommand.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help", "-h", "--help":
		printHelp()
	case "version":
		fmt.Printf("bumpboard version %s\n", CliVersion)
	case "serve", "init", "clean", "backup", "restore":
		args := append([]string{cmd}, os.Args[2:]...)
		if code := service.HandleCommand(args); code != 0 {
			exit(code)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	service.PrintHelp()
}
