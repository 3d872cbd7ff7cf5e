package router

import (
	"errors"
	"fmt"
	"testing"
)

type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() string  { return e.code }

func TestDeriveErrorCodeTopLevel(t *testing.T) {
	err := &codedError{code: "empty cart", msg: "cart is empty"}
	if got := deriveErrorCode(err); got != "EMPTY_CART" {
		t.Fatalf("deriveErrorCode = %s, expected EMPTY_CART", got)
	}
}

func TestDeriveErrorCodeUnwrapsChain(t *testing.T) {
	kind := &codedError{code: "persistence", msg: "persistence failure"}
	err := fmt.Errorf("%w: %w", kind, errors.New("driver: connection reset"))
	if got := deriveErrorCode(err); got != "PERSISTENCE" {
		t.Fatalf("deriveErrorCode = %s, expected PERSISTENCE", got)
	}
}

func TestDeriveErrorCodeFallsBackToTypeName(t *testing.T) {
	err := &plainError{}
	if got := deriveErrorCode(err); got != "PLAINERROR" {
		t.Fatalf("deriveErrorCode = %s, expected PLAINERROR", got)
	}
}

func TestDeriveErrorCodeNil(t *testing.T) {
	if got := deriveErrorCode(nil); got != "" {
		t.Fatalf("deriveErrorCode(nil) = %s, expected empty", got)
	}
}

type plainError struct{}

func (e *plainError) Error() string { return "plain" }
