package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(f func()) string {
	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan bool)
	go func() {
		_, _ = io.Copy(&buf, r)
		done <- true
	}()

	f()
	_ = w.Close()
	os.Stdout = oldStdout
	<-done

	return buf.String()
}

func callMain() (int, string) {
	var exitCode int
	oldExit := exit
	defer func() { exit = oldExit }()
	exit = func(code int) {
		exitCode = code
		panic("exit")
	}

	output := captureOutput(func() {
		defer func() {
			if r := recover(); r != nil {
				if r != "exit" {
					panic(r)
				}
			}
		}()
		RealMain()
	})
	return exitCode, output
}

func TestMain(t *testing.T) {
	// Save original args
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		name           string
		args           []string
		expectedExit   int
		expectedOutput string
	}{
		{
			name:           "no arguments",
			args:           []string{"bumpboard"},
			expectedExit:   1,
			expectedOutput: "Usage: bumpboard <command>",
		},
		{
			name:           "help command",
			args:           []string{"bumpboard", "help"},
			expectedExit:   0,
			expectedOutput: "Usage: bumpboard <command>",
		},
		{
			name:           "version command",
			args:           []string{"bumpboard", "version"},
			expectedExit:   0,
			expectedOutput: "bumpboard version " + CliVersion,
		},
		{
			name:           "unknown command",
			args:           []string{"bumpboard", "unknown"},
			expectedExit:   1,
			expectedOutput: "Unknown command: unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			exitCode, output := callMain()

			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestPrintHelp(t *testing.T) {
	output := captureOutput(func() {
		printHelp()
	})

	for _, cmd := range []string{"help", "version", "serve", "init", "clean", "backup", "restore", "--config"} {
		assert.Contains(t, output, cmd)
	}
}
