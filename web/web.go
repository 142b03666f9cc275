// Package web holds the browser chat page served at "/".
package web

import "embed"

//go:embed templates static
var Assets embed.FS
