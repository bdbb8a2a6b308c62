package errors

const (
	UnknownErrorCode         = 100_001
	StorageNotReadyErrorCode = 100_002
)

var UnknownError = new(UnknownErrorCode, "UnknownError", "unexpected error: %v")

// StorageNotReadyError indicates an operation gave up waiting for the storage connection
var StorageNotReadyError = new(StorageNotReadyErrorCode, "StorageNotReady", "storage is not ready yet: %v")
