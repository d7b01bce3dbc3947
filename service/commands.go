package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bumpboard/app/config"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
)

var osExit = os.Exit

// HandleCommand runs a board subcommand and returns an exit code.
func HandleCommand(args []string) int {
	args, configPath, err := extractConfigFlag(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		osExit(1)
		return 1
	}
	if len(args) < 1 {
		PrintHelp()
		osExit(1)
		return 1
	}

	cmd := args[0]
	if cmd == "help" {
		PrintHelp()
		return 0
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		osExit(1)
		return 1
	}

	switch cmd {
	case "serve":
		if err := RunAppServer(context.Background(), cfg); err != nil {
			fmt.Printf("Server error: %v\n", err)
			osExit(1)
			return 1
		}
		return 0
	case "clean":
		clean(cfg)
		return 0
	case "init":
		initDb(cfg)
		return 0
	case "backup":
		if _, err := backup(cfg); err != nil {
			fmt.Printf("Failed to backup database: %v\n", err)
			return 1
		}
		return 0
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			osExit(1)
			return 1
		}
		return restore(cfg, args[1])
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		PrintHelp()
		osExit(1)
		return 1
	}
}

// PrintHelp prints the command overview.
func PrintHelp() {
	helpText := `Usage: bumpboard <command> [--config <file>] [options]

Commands:
  help                 Display this help message
  version              Show version information
  serve                Run the board web server
  init                 Initialize a new empty database
  clean                Remove the database
  backup               Write a compressed backup of the database
  restore <file>       Restore the database from a backup
`
	fmt.Println(helpText)
}

// clean removes the database.
func clean(cfg config.Config) {
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return
	}

	fmt.Print("Are you sure you want to clean the database? This cannot be undone. [y/N] ")
	var response string
	fmt.Scanln(&response)
	if response != "y" && response != "Y" {
		fmt.Println("Operation cancelled")
		return
	}

	if err := os.RemoveAll(cfg.DBPath); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return
	}
	fmt.Println("Database cleaned successfully")
}

// initDb initializes a new empty database.
func initDb(cfg config.Config) {
	if _, err := os.Stat(cfg.DBPath); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return
	}

	if err := os.MkdirAll(cfg.DBPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return
	}
	defer store.Close()

	fmt.Println("Database initialized successfully")
}

// backup writes a zstd-compressed badger backup into the backup directory
// and returns its path.
func backup(cfg config.Config) (string, error) {
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		return "", fmt.Errorf("no database exists at %s", cfg.DBPath)
	}
	if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return "", err
	}
	defer store.Close()

	backupFile := filepath.Join(cfg.BackupDir, fmt.Sprintf("backup_%d.bak.zst", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return "", err
	}
	if _, err := store.Backup(enc); err != nil {
		enc.Close()
		os.Remove(backupFile)
		return "", err
	}
	if err := enc.Close(); err != nil {
		os.Remove(backupFile)
		return "", err
	}

	fi, err := f.Stat()
	if err != nil {
		return "", err
	}
	fmt.Printf("Database backed up successfully to %s (%s)\n", backupFile, humanize.IBytes(uint64(fi.Size())))
	return backupFile, nil
}

// restore loads a backup written by backup into a fresh database.
func restore(cfg config.Config, backupFile string) int {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	_, statErr := os.Stat(cfg.DBPath)
	exists := statErr == nil
	if exists {
		fmt.Print("Existing database found. Do you want to replace it? [y/N] ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Operation cancelled")
			return 1
		}
	}

	// The backup is loaded into a staging directory first; the live database
	// is only swapped out once the load has succeeded.
	staging := fmt.Sprintf("%s.restore-%d", cfg.DBPath, time.Now().UnixNano())
	if err := os.MkdirAll(staging, 0755); err != nil {
		fmt.Printf("Failed to create staging directory: %v\n", err)
		return 1
	}
	if err := loadBackup(cfg, staging, backupFile); err != nil {
		os.RemoveAll(staging)
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	if err := swapDatabase(cfg.DBPath, staging, exists); err != nil {
		os.RemoveAll(staging)
		fmt.Printf("Failed to replace database: %v\n", err)
		return 1
	}

	fmt.Printf("Database restored successfully from %s (%s)\n", backupFile, humanize.IBytes(uint64(fi.Size())))
	return 0
}

// loadBackup decodes backupFile into a fresh database at dir.
func loadBackup(cfg config.Config, dir, backupFile string) (err error) {
	f, err := os.Open(backupFile)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	cfg.DBPath = dir
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); err == nil {
			err = cerr
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during restore: %v", r)
		}
	}()
	return store.Load(dec)
}

// swapDatabase moves staging into place at dbPath. An existing database is
// moved aside first and put back if the swap fails.
func swapDatabase(dbPath, staging string, exists bool) error {
	if !exists {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return err
		}
		return os.Rename(staging, dbPath)
	}

	old := fmt.Sprintf("%s.old-%d", dbPath, time.Now().UnixNano())
	if err := os.Rename(dbPath, old); err != nil {
		return err
	}
	if err := os.Rename(staging, dbPath); err != nil {
		if rerr := os.Rename(old, dbPath); rerr != nil {
			return fmt.Errorf("%w (previous database left at %s: %v)", err, old, rerr)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		fmt.Printf("Failed to remove previous database at %s: %v\n", old, err)
	}
	return nil
}
