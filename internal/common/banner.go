package common

import (
	"fmt"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner
func PrintBanner(serviceName, environment, mode, logFile string) {
	version := GetVersion()
	build := GetBuild()

	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorPurple).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(80)

	fmt.Printf("\n")

	b.PrintTopLine()
	b.PrintCenteredText("WORKLOG RECONCILER")
	b.PrintCenteredText("Clockify / Azure DevOps Reconciliation Service")
	b.PrintSeparatorLine()

	b.PrintKeyValue("Version", version, 15)
	b.PrintKeyValue("Build", build, 15)
	b.PrintKeyValue("Environment", environment, 15)
	b.PrintKeyValue("Mode", mode, 15)
	b.PrintBottomLine()

	fmt.Printf("\n")

	fmt.Printf("📋 Configuration:\n")
	fmt.Printf("   • Config File: config.toml\n")

	if logFile != "" {
		pattern := strings.Replace(logFile, ".log", ".{YYYY-MM-DDTHH-MM-SS}.log", 1)
		fmt.Printf("   • Log File: %s\n", pattern)
	}
	fmt.Printf("\n")

	printReconcilerInfo()
	fmt.Printf("\n")
}

// printReconcilerInfo displays the reconciler capabilities
func printReconcilerInfo() {
	fmt.Printf("🎯 Reconciler Capabilities:\n")
	fmt.Printf("   • Time Entries - Fetch Clockify entries for a date range\n")
	fmt.Printf("   • Work Items - Resolve referenced Azure DevOps work items\n")
	fmt.Printf("   • Matching - Extract IDs from descriptions with fuzzy fallback\n")
	fmt.Printf("   • Reports - Render JSON, CSV, HTML and XLSX summaries\n")
}
