package worker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/smartskincare/api/internal/service"
)

func TestIsPermanentEmailFailure(t *testing.T) {
	permanent := []error{
		service.ErrEmailServiceDisabled,
		service.ErrEmailServiceNotConfigured,
		service.ErrInvalidEmail,
		service.ErrEmailRecipientRejected,
		fmt.Errorf("send failed: %w", service.ErrEmailRecipientRejected),
	}
	for _, err := range permanent {
		if !isPermanentEmailFailure(err) {
			t.Errorf("%v should not be retried", err)
		}
	}

	retryable := []error{
		errors.New("dial tcp: connection refused"),
		service.ErrNotFound,
		nil,
	}
	for _, err := range retryable {
		if isPermanentEmailFailure(err) {
			t.Errorf("%v should be retryable", err)
		}
	}
}
