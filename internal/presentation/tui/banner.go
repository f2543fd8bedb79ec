package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner with the library version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Field-green gradient, dark at the soil line
	s1 := termenv.String(`  __                                      `).Foreground(p.Color("#a3e635"))
	s2 := termenv.String(` / _|  _   _  _ __  _ __  ___  __      __ `).Foreground(p.Color("#84cc16"))
	s3 := termenv.String(`| |_  | | | || '__|| '__|/ _ \ \ \ /\ / / `).Foreground(p.Color("#65a30d"))
	s4 := termenv.String(`|  _| | |_| || |   | |  | (_) | \ V  V /  `).Foreground(p.Color("#4d7c0f"))
	s5 := termenv.String(`|_|    \__,_||_|   |_|   \___/   \_/\_/   `).Foreground(p.Color("#3f6212"))
	tag := termenv.String("  streaming dataflow " + version).Foreground(p.Color("#78716c")).Italic()

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(tag)
	fmt.Println()
}
