package errors

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Configuration-resolution errors are fatal to the current reconciliation
// cycle. They are never silently defaulted; the controller propagates them and
// controller-runtime schedules a retry.

// ErrSecretNotFound indicates that a Secret referenced by a server option does
// not exist in the instance namespace.
var ErrSecretNotFound = errors.New("referenced secret not found")

// ErrSecretKeyNotFound indicates that a referenced Secret exists but does not
// contain the expected key.
var ErrSecretKeyNotFound = errors.New("referenced secret key not found")

// ErrOptionInvalid indicates a declared option carries neither a literal value
// nor a secret reference at resolution time.
var ErrOptionInvalid = errors.New("invalid server option")

// ErrTransientKubernetesAPI indicates a temporary Kubernetes API error that
// should be retried, such as rate limiting or a server-side conflict.
var ErrTransientKubernetesAPI = errors.New("transient Kubernetes API error")

// IsConfigResolution reports whether err stems from resolving a server option.
func IsConfigResolution(err error) bool {
	return errors.Is(err, ErrSecretNotFound) ||
		errors.Is(err, ErrSecretKeyNotFound) ||
		errors.Is(err, ErrOptionInvalid)
}

// IsTransientKubernetesAPI checks if an error is a transient Kubernetes API error.
func IsTransientKubernetesAPI(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrTransientKubernetesAPI) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	transientPatterns := []string{
		"rate limit",
		"too many requests",
		"server error",
		"service unavailable",
		"internal server error",
		"context deadline exceeded",
		"timeout",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// WrapTransientKubernetesAPI wraps an error as a transient Kubernetes API error.
// If the error is already classified as transient, it is returned as-is.
func WrapTransientKubernetesAPI(err error) error {
	if err == nil {
		return nil
	}

	if IsTransientKubernetesAPI(err) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrTransientKubernetesAPI, err)
}

// WrapSecretNotFound wraps err with the ErrSecretNotFound sentinel, naming the Secret.
func WrapSecretNotFound(namespace, name string, err error) error {
	return fmt.Errorf("%w: %s/%s: %w", ErrSecretNotFound, namespace, name, err)
}

// ShouldRequeue determines if an error should trigger a delayed requeue.
// Returns (shouldRequeue, requeueAfter). Configuration-resolution errors are
// retried on the standard interval (the user has to fix the referenced
// Secret); transient API errors on the short one. For unknown errors the
// zero duration defers to controller-runtime's backoff.
func ShouldRequeue(err error) (bool, time.Duration) {
	if err == nil {
		return false, 0
	}

	if IsTransientKubernetesAPI(err) {
		return true, 5 * time.Second
	}

	if IsConfigResolution(err) {
		return true, 1 * time.Minute
	}

	return true, 0
}
