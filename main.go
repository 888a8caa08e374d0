// =============================================================================
// Scan Audit - Main Entry Point
// =============================================================================
//
// USAGE:
//   scanaudit process       - Audit the scanned files and write the reports
//   scanaudit validate      - Check the scanned filenames only
//   scanaudit version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, reconciliation and reporting
//   - pkg/utils/     : File discovery and run summaries
//
// =============================================================================

package main

import (
	"github.com/flinders-library/scanaudit/cmd"
)

func main() {
	cmd.Execute()
}
