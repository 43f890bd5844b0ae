package errors

// Convenience functions for common error patterns

// Resolver errors. Both are fatal for the invocation: no compile is attempted
// when the input set cannot be established.

func InputsNotFound() *BuildError {
	return New(CategoryResolve, SeverityFatal, "no input files or patterns configured")
}

func NoMatchingFiles(patterns []string) *BuildError {
	return New(CategoryResolve, SeverityFatal, "input patterns matched no files").
		WithContext("patterns", patterns)
}

// Compile-stage errors. These abort the current pass only; in watch mode the
// controller stays alive for the next trigger.

func FileReadFailed(path string, cause error) *BuildError {
	return Wrap(cause, CategoryRead, SeverityError, "input file could not be read").
		WithContext("path", path)
}

func ParseFailed(path string, cause error) *BuildError {
	return Wrap(cause, CategoryParse, SeverityError, "stylesheet parse failed").
		WithContext("path", path)
}

func ProcessFailed(cause error) *BuildError {
	return Wrap(cause, CategoryProcess, SeverityError, "stylesheet processing failed")
}

func WriteFailed(path string, cause error) *BuildError {
	return Wrap(cause, CategoryWrite, SeverityError, "artifact write failed").
		WithContext("path", path)
}

// Config errors

func ConfigUnreadable(path string, cause error) *BuildError {
	return Wrap(cause, CategoryConfig, SeverityWarning, "config file could not be parsed, using defaults").
		WithContext("path", path)
}

// Infrastructure errors

func WatchFailed(cause error) *BuildError {
	return Wrap(cause, CategoryWatch, SeverityFatal, "file watcher could not be started")
}

func HistoryError(operation string, cause error) *BuildError {
	return Wrap(cause, CategoryStorage, SeverityWarning, "compile history operation failed").
		WithContext("operation", operation)
}
