// Package exitcode provides the process exit codes returned by vitedocs
package exitcode

// Exit codes for the vitedocs CLI
const (
	Success      = 0
	GeneralError = 1
	ConfigError  = 2
	SourceError  = 3 // source root missing or unreadable
	OutputError  = 4 // an output artifact could not be written
	Interrupted  = 130
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case SourceError:
		return "Source root error"
	case OutputError:
		return "Output write error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
