// Package settings holds build metadata and per-invocation options shared by
// the tblx CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "tblx"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// InputSource describes where rows and column definitions come from.
// An empty RowsPath means stdin.
type InputSource struct {
	RowsPath    string
	ColumnsPath string
}

// Run holds the settings for a single execution of the application.
type Run struct {
	MinLogLevel  int8
	Input        InputSource
	OutputFormat string
	Interactive  bool
	NoColor      bool
	// Width overrides the detected terminal width when positive.
	Width       int
	ExitOnError bool
}

// NewCliParams returns the defaults used by the CLI before flags apply.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel:  0,
		OutputFormat: "table",
		ExitOnError:  true,
	}
}
