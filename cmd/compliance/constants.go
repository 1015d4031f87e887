package main

// Default values for CLI commands.
const (
	DefaultExpiringWindow = 30
	MaxTitleWidth         = 40
)

// Valid export formats.
var validFormats = []string{"json", "markdown"}
