package logger

// Report text.
const (
	msgStartingExecution = "Starting test execution, please wait..."
	msgSourcesToRun      = "A total of %d test files matched the specified pattern."

	labelPassed  = "Passed"
	labelFailed  = "Failed"
	labelSkipped = "Skipped"

	headerErrorMessage   = "Error Message:"
	headerStackTrace     = "Stack Trace:"
	headerStandardOutput = "Standard Output Messages:"
	headerStandardError  = "Standard Error Messages:"
	headerDebugTraces    = "Debug Traces Messages:"
	headerAdditionalInfo = "Additional Information Messages:"

	msgRunAborted          = "Test Run Aborted."
	msgRunAbortedWithError = "Test Run Aborted with error: %v"

	labelSourceFailed  = "Failed!"
	labelSourcePassed  = "Passed!"
	labelSourceSkipped = "Skipped!"
	msgSourceCounts    = " - Failed: %5d, Passed: %5d, Skipped: %5d, Total: %5d, Duration: "

	msgRunFailed     = "Test Run Failed."
	msgRunSuccessful = "Test Run Successful."
	msgTotalTests    = "Total tests: %d"
	msgOutcomeCount  = "%11s: %d"
	msgTotalTime     = " Total time: "
)

const (
	resultIndent  = "  " // precedes every per-test line
	messageMarker = " "  // added after resultIndent on detail text lines
)
