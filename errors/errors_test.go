package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewIncludesLocation(t *testing.T) {
	err := New("something %s", "broke")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "errors_test.go:") {
		t.Errorf("expected caller location in %q", err.Error())
	}
	if !strings.Contains(err.Error(), "something broke") {
		t.Errorf("expected formatted message in %q", err.Error())
	}
}

func TestWrapfNil(t *testing.T) {
	if err := Wrapf(nil, "ignored"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestWrapfPreservesCause(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrapf(cause, "while doing %s", "work")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !stderrors.Is(err, cause) {
		t.Errorf("expected wrapped error to match cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "while doing work: root cause") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
