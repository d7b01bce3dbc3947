// Package views holds the board's HTML templates.
package views

import "embed"

//go:embed *.html
var FS embed.FS
