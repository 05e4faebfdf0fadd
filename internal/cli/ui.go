package cli

import (
	"fmt"

	"github.com/fatih/color"
)

func printHeader(title string) {
	fmt.Println(color.CyanString(title))
	fmt.Println("─────────────────────")
}

func printOK(format string, args ...any) {
	fmt.Println(color.GreenString("✓ ") + fmt.Sprintf(format, args...))
}

func printFail(format string, args ...any) {
	fmt.Println(color.RedString("✗ ") + fmt.Sprintf(format, args...))
}

func printWarn(format string, args ...any) {
	fmt.Println(color.YellowString("! ") + fmt.Sprintf(format, args...))
}
