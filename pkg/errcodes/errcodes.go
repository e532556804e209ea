package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	InvalidUserID        failure.ErrorCode = "InvalidUserID"
	InvalidProfileIndex  failure.ErrorCode = "InvalidProfileIndex"
	InvalidPriceRange    failure.ErrorCode = "InvalidPriceRange"
	InvalidSupplyRange   failure.ErrorCode = "InvalidSupplyRange"
	InvalidRecipient     failure.ErrorCode = "InvalidRecipient"
	InvalidSender        failure.ErrorCode = "InvalidSender"
	ProfileNotFound      failure.ErrorCode = "ProfileNotFound"
	ProfilesLimitReached failure.ErrorCode = "ProfilesLimitReached"
	StorageCorrupted     failure.ErrorCode = "StorageCorrupted"
	PurchaseFailed       failure.ErrorCode = "PurchaseFailed"
	UserbotUnavailable   failure.ErrorCode = "UserbotUnavailable"
	WorkerAlreadyRunning failure.ErrorCode = "WorkerAlreadyRunning"
)
