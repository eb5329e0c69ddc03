package main

import "github.com/09ahmad/drop-go/api"

const (
	// Standard colors
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

var roleColors = map[string]string{
	api.RoleAdmin:  Magenta,
	api.RoleClient: Cyan,
}

func roleColor(role string) string {
	if colour, ok := roleColors[role]; ok {
		return colour
	}
	return Gray
}
