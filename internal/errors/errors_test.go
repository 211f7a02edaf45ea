package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCheckErrorFormatting(t *testing.T) {
	err := WrapAPIError("query_range", fmt.Errorf("rate limited"), http.StatusTooManyRequests)
	want := "query_range failed (status 429): rate limited"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	err = WrapNetworkError("query_range", fmt.Errorf("connection refused"))
	want = "query_range failed: connection refused"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCheckErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		is       error
	}{
		{"network", WrapNetworkError("op", fmt.Errorf("refused")), ErrorTypeNetwork, ErrConnectionFailed},
		{"timeout", WrapNetworkError("op", fmt.Errorf("deadline")), ErrorTypeNetwork, ErrTimeout},
		{"api", WrapAPIError("op", fmt.Errorf("boom"), 500), ErrorTypeAPI, nil},
		{"parse", WrapParseError("op", fmt.Errorf("%w: junk", ErrMalformedBody)), ErrorTypeParse, ErrMalformedBody},
		{"input", WrapInputError("op", fmt.Errorf("%w: empty", ErrInvalidInput)), ErrorTypeInput, ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var checkErr *CheckError
			if !errors.As(tc.err, &checkErr) {
				t.Fatalf("expected CheckError, got %T", tc.err)
			}
			if checkErr.Type != tc.wantType {
				t.Fatalf("Type = %s, want %s", checkErr.Type, tc.wantType)
			}
			if tc.is != nil && !errors.Is(tc.err, tc.is) {
				t.Fatalf("errors.Is(%v, %v) = false", tc.err, tc.is)
			}
		})
	}
}

func TestCheckErrorUnwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying")
	err := WrapParseError("parse_range", underlying)
	if !errors.Is(err, underlying) {
		t.Fatal("expected Unwrap to expose the underlying error")
	}
}

func TestAPIStatusCode(t *testing.T) {
	err := WrapAPIError("query_range", fmt.Errorf("server error"), 500)
	code, ok := APIStatusCode(err)
	if !ok || code != 500 {
		t.Fatalf("APIStatusCode = %d, %v; want 500, true", code, ok)
	}

	if _, ok := APIStatusCode(WrapNetworkError("op", fmt.Errorf("x"))); ok {
		t.Fatal("APIStatusCode should not match network errors")
	}
	if _, ok := APIStatusCode(nil); ok {
		t.Fatal("APIStatusCode should not match nil")
	}
}

func TestIsInputError(t *testing.T) {
	if !IsInputError(WrapInputError("read_password", fmt.Errorf("%w: empty", ErrInvalidInput))) {
		t.Fatal("expected input error")
	}
	if IsInputError(WrapAPIError("op", fmt.Errorf("x"), 400)) {
		t.Fatal("API error misclassified as input error")
	}
	if IsInputError(nil) {
		t.Fatal("nil misclassified as input error")
	}
}
