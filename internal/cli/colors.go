package cli

import (
	"fmt"
	"os"
)

const (
	ResetCode  = "\033[0m"
	BoldCode   = "\033[1m"
	DimCode    = "\033[2m"
	RedCode    = "\033[31m"
	GreenCode  = "\033[32m"
	YellowCode = "\033[33m"
	BlueCode   = "\033[34m"
	PurpleCode = "\033[35m"
	CyanCode   = "\033[36m"
)

// enabled is a cached check for the NO_COLOR convention (https://no-color.org/).
var enabled = checkColor()

func checkColor() bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	if val := os.Getenv("LOG_COLOR"); val != "" {
		return val == "true" || val == "1"
	}
	return true
}

// Enabled reports whether ANSI output is active for this process.
func Enabled() bool {
	return enabled
}

// Style wraps text in a specific color code.
func Style(text string, colorCode string) string {
	if !enabled {
		return text
	}
	return fmt.Sprintf("%s%s%s", colorCode, text, ResetCode)
}

func CheckMark() string {
	return Style("✔", GreenCode)
}

func Arrow() string {
	return Style("➜", BlueCode)
}

func CrossMark() string {
	return Style("✘", RedCode)
}
