package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	base := New(http.StatusBadRequest, "invalid_payload", errors.New("bad json"))
	wrapped := fmt.Errorf("decode: %w", base)

	status, code := StatusCode(wrapped)
	if status != http.StatusBadRequest || code != "invalid_payload" {
		t.Fatalf("StatusCode: want=400/invalid_payload got=%d/%s", status, code)
	}
	if wrapped.Error() != "decode: bad json" {
		t.Fatalf("Error: got=%q", wrapped.Error())
	}

	status, code = StatusCode(errors.New("boom"))
	if status != http.StatusInternalServerError || code != "internal_error" {
		t.Fatalf("StatusCode plain: got=%d/%s", status, code)
	}
}
