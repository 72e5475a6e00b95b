package errorutil

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		name      string
		err       *Error
		code      int
		retryable bool
	}{
		{"retriable", Retriable("store unreachable"), 500, true},
		{"retriable with details", RetriableWithDetails("store unreachable", "dial tcp refused"), 500, true},
		{"non retriable", NonRetriable("bad goal data"), 400, false},
		{"not found", NotFound("user not found"), 404, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("code = %d, want %d", tc.err.Code, tc.code)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("retryable = %v, want %v", tc.err.Retryable, tc.retryable)
			}
			if tc.err.Error() == "" {
				t.Error("message is empty")
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("wrap(nil) should be nil")
	}
}

func TestWrapPlainErrorDefaultsRetryable(t *testing.T) {
	e := Wrap(errors.New("boom"))
	if !e.Retryable {
		t.Error("unclassified error must default to retryable")
	}
	if e.Message != "boom" {
		t.Errorf("message = %q, want boom", e.Message)
	}
}

func TestWrapFindsWrappedError(t *testing.T) {
	sentinel := NotFound("idp not found")
	wrapped := fmt.Errorf("resolve entities: %w", sentinel)

	e := Wrap(wrapped)
	if e != sentinel {
		t.Error("wrap did not unwrap to the original Error")
	}
	if e.Retryable {
		t.Error("not-found must stay non-retryable through wrapping")
	}
}
