package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice rather than a map because errors.Is() needs chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	{
		err: ErrExternalTool,
		info: ErrorInfo{
			Message: "An external build tool failed. Check the tool output above.",
			Action:  "Fix the reported build error and run xcbundle again.",
		},
	},
	{
		err: ErrNoProducts,
		info: ErrorInfo{
			Message: "No products to create frameworks for were found.",
			Action:  "Add library products to Package.swift or name products/targets on the command line.",
		},
	},
	{
		err: ErrInvalidProducts,
		info: ErrorInfo{
			Message: "One or more product/target names are not buildable.",
			Action:  "Run 'xcbundle products' to list valid names.",
		},
	},
	{
		err: ErrInvalidPlatform,
		info: ErrorInfo{
			Message: "Unknown platform.",
			Action:  "Use one of: ios, macos, maccatalyst, tvos, watchos.",
		},
	},
	{
		err: ErrNoPlatforms,
		info: ErrorInfo{
			Message: "None of the requested platforms are supported by the package.",
			Action:  "Check the platforms declared in Package.swift.",
		},
	},
	{
		err: ErrInvalidBuildSetting,
		info: ErrorInfo{
			Message: "Build settings must be written as NAME=VALUE.",
			Action:  "Fix the --xc-setting value, e.g. --xc-setting IPHONEOS_DEPLOYMENT_TARGET=13.0.",
		},
	},
	{
		err: ErrInvalidConfiguration,
		info: ErrorInfo{
			Message: "Build configuration must be debug or release.",
			Action:  "Pass --configuration debug or --configuration release.",
		},
	},
	{
		err: ErrLegacyRequiresProject,
		info: ErrorInfo{
			Message: "The legacy build path needs an Xcode project.",
			Action:  "Set package.project (or --project) to an .xcodeproj, or drop --legacy.",
		},
	},
	{
		err: ErrBuildDirLocked,
		info: ErrorInfo{
			Message: "Another xcbundle run is using this build directory.",
			Action:  "Wait for the other run to finish or use a different --build-path.",
		},
	},
	{
		err: ErrChecksumMismatch,
		info: ErrorInfo{
			Message: "The zip does not match its recorded checksum.",
			Action:  "Re-run the packaging step to regenerate the zip and checksum.",
		},
	},
	{
		err: ErrManifestLoad,
		info: ErrorInfo{
			Message: "Could not load the Swift package.",
			Action:  "Check --package-path and that 'swift package dump-package' works in that directory.",
		},
	},
	{
		err: ErrToolMissing,
		info: ErrorInfo{
			Message: "A required build tool is not installed.",
			Action:  "Install Xcode and its command line tools, or point toolchain.* at the right executables.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
}

// errorInfoMap provides O(1) lookup for unwrapped sentinel errors.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error, falling back to
// errors.Is() traversal for wrapped errors.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
