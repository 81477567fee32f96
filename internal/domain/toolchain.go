package domain

// Toolchain holds the external executables the pipeline invokes. It is passed
// explicitly to each stage instead of living in process-wide state.
type Toolchain struct {
	// Xcrun is the launcher prefixed to Xcode tools. Empty runs tools directly.
	Xcrun string `json:"xcrun" yaml:"xcrun" mapstructure:"xcrun"`
	// Xcodebuild is the build tool name passed to the launcher.
	Xcodebuild string `json:"xcodebuild" yaml:"xcodebuild" mapstructure:"xcodebuild"`
	// Dwarfdump is the debug-info inspection tool name passed to the launcher.
	Dwarfdump string `json:"dwarfdump" yaml:"dwarfdump" mapstructure:"dwarfdump"`
	// Ditto is the archive tool used to zip bundles.
	Ditto string `json:"ditto" yaml:"ditto" mapstructure:"ditto"`
	// Swift is the Swift driver used to describe the package.
	Swift string `json:"swift" yaml:"swift" mapstructure:"swift"`
}

// DefaultToolchain returns the stock macOS toolchain.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Xcrun:      "xcrun",
		Xcodebuild: "xcodebuild",
		Dwarfdump:  "dwarfdump",
		Ditto:      "ditto",
		Swift:      "swift",
	}
}

// XcodeTool returns the argv prefix for an Xcode tool, routed through xcrun
// when a launcher is configured.
func (t Toolchain) XcodeTool(tool string) []string {
	if t.Xcrun == "" {
		return []string{tool}
	}
	return []string{t.Xcrun, tool}
}

// XcodebuildCommand returns the argv prefix for xcodebuild.
func (t Toolchain) XcodebuildCommand() []string {
	return t.XcodeTool(t.Xcodebuild)
}

// DwarfdumpCommand returns the argv prefix for dwarfdump.
func (t Toolchain) DwarfdumpCommand() []string {
	return t.XcodeTool(t.Dwarfdump)
}
