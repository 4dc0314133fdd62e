package storage

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// Provider error codes used for classification.
const (
	CodeNoSuchBucket            = "NoSuchBucket"
	CodeNoSuchKey               = "NoSuchKey"
	CodeNotFound                = "NotFound"
	CodeBucketAlreadyExists     = "BucketAlreadyExists"
	CodeBucketAlreadyOwnedByYou = "BucketAlreadyOwnedByYou"
	CodeBucketNotEmpty          = "BucketNotEmpty"
)

// ResponseError is a provider-style error raised by the memory driver.
type ResponseError struct {
	Code       string
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// ErrorCode returns the provider error code.
func (e *ResponseError) ErrorCode() string { return e.Code }

// ErrorMessage returns the provider message.
func (e *ResponseError) ErrorMessage() string { return e.Message }

// HTTPStatusCode returns the HTTP status of the failed request.
func (e *ResponseError) HTTPStatusCode() int { return e.StatusCode }

// ErrorCode extracts the provider error code from err, or "".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	// smithy.APIError and ResponseError
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	var mErr minio.ErrorResponse
	if errors.As(err, &mErr) {
		return mErr.Code
	}
	return ""
}

// StatusCode extracts the provider HTTP status from err, or 0.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	var withStatus interface{ HTTPStatusCode() int }
	if errors.As(err, &withStatus) {
		return withStatus.HTTPStatusCode()
	}
	var mErr minio.ErrorResponse
	if errors.As(err, &mErr) {
		return mErr.StatusCode
	}
	return 0
}

// IsNoSuchBucket reports whether err says the bucket does not exist.
func IsNoSuchBucket(err error) bool {
	return ErrorCode(err) == CodeNoSuchBucket
}

// IsNoSuchKey reports whether err says the object does not exist.
func IsNoSuchKey(err error) bool {
	return ErrorCode(err) == CodeNoSuchKey
}

// IsNotFound reports whether err is any provider not-found condition.
func IsNotFound(err error) bool {
	switch ErrorCode(err) {
	case CodeNoSuchBucket, CodeNoSuchKey, CodeNotFound:
		return true
	}
	return StatusCode(err) == http.StatusNotFound
}

// IsBucketAlreadyExists reports whether a create failed because the bucket exists.
func IsBucketAlreadyExists(err error) bool {
	switch ErrorCode(err) {
	case CodeBucketAlreadyExists, CodeBucketAlreadyOwnedByYou:
		return true
	}
	return false
}
