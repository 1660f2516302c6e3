package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders money and percent values with en-US digit grouping.
var printer = message.NewPrinter(language.English)

func money(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

func percent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
