package service

import (
	"fmt"

	"bumpboard/app/config"
	"bumpboard/app/repositories"
)

// loadConfig is swapped out by tests.
var loadConfig = config.Load

// extractConfigFlag removes "--config <path>" from args and returns the path.
func extractConfigFlag(args []string) ([]string, string, error) {
	rest := make([]string, 0, len(args))
	var path string
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" {
			if i+1 >= len(args) {
				return nil, "", fmt.Errorf("--config requires a file path")
			}
			path = args[i+1]
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	return rest, path, nil
}

func openStore(cfg config.Config) (*repositories.BadgerStore, error) {
	return repositories.NewBadgerStore(cfg.DBPath, repositories.Options{SyncWrites: cfg.SyncWrites})
}
