package errs

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrConfigInvalid = errors.New("configuration invalid")
	ErrTimeout       = errors.New("timeout")
)

func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigInvalid,
		Details:    fmt.Sprintf("Invalid configuration: %s", configName),
		Cause:      cause,
		Field:      "config",
	}
}

// NewAssetTimeoutError is returned when an asset-store call runs past its timeout.
func NewAssetTimeoutError(operation string, timeout time.Duration) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        fmt.Errorf("%w: %w", ErrUpstream, ErrTimeout),
		Message:    "asset storage is unavailable",
		Details:    fmt.Sprintf("%s did not complete within %v", operation, timeout),
	}
}

func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout)
}
