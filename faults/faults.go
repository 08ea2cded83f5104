// Package faults defines the error kinds reported by the cloner.
//
// Every kind is a pointer struct carrying the offending type (and field, where
// one is involved) plus a sentinel that errors.Is matches, so callers can use
// either style:
//
//	var ue *faults.UninstantiableTypeError
//	if errors.As(err, &ue) { ... ue.Type ... }
//	if errors.Is(err, faults.ErrUninstantiable) { ... }
package faults

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"reflect-cloner/internal/common"
)

var (
	ErrUninstantiable    = errors.New("uninstantiable type")
	ErrInaccessibleField = errors.New("inaccessible field")
	ErrDuplicateMapping  = errors.New("duplicate identity mapping")
	ErrPolicyConflict    = errors.New("conflicting copy policies")
	ErrCopier            = errors.New("custom copier failed")
)

// UninstantiableTypeError reports a type no allocation strategy applies to.
type UninstantiableTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *UninstantiableTypeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", ErrUninstantiable, common.TypeName(e.Type))
	}

	return fmt.Sprintf("%s: %s: %s", ErrUninstantiable, common.TypeName(e.Type), e.Reason)
}

func (e *UninstantiableTypeError) Is(target error) bool { return target == ErrUninstantiable }

// InaccessibleFieldError reports a field the runtime capability refuses to
// read or write while strict access is enabled.
type InaccessibleFieldError struct {
	Type  reflect.Type // declaring struct type
	Field string
}

func (e *InaccessibleFieldError) Error() string {
	return fmt.Sprintf("%s: %s.%s", ErrInaccessibleField, common.TypeName(e.Type), e.Field)
}

func (e *InaccessibleFieldError) Is(target error) bool { return target == ErrInaccessibleField }

// DuplicateMappingError means the identity map was asked to map an already
// mapped original to a different copy. It always indicates a walker bug.
type DuplicateMappingError struct {
	Type reflect.Type
}

func (e *DuplicateMappingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateMapping, common.TypeName(e.Type))
}

func (e *DuplicateMappingError) Is(target error) bool { return target == ErrDuplicateMapping }

// PolicyConflictError reports rules of equal precedence that disagree.
// Field is empty for type level conflicts.
type PolicyConflictError struct {
	Type    reflect.Type
	Field   string
	Actions []string
}

func (e *PolicyConflictError) Error() string {
	target := common.TypeName(e.Type)
	if e.Field != "" {
		target += "." + e.Field
	}

	return fmt.Sprintf("%s for %s: %s", ErrPolicyConflict, target, strings.Join(e.Actions, ", "))
}

func (e *PolicyConflictError) Is(target error) bool { return target == ErrPolicyConflict }

// CopierError wraps an error returned by a user supplied copier.
type CopierError struct {
	Type reflect.Type
	Err  error
}

func (e *CopierError) Error() string {
	return fmt.Sprintf("%s for %s: %v", ErrCopier, common.TypeName(e.Type), e.Err)
}

func (e *CopierError) Is(target error) bool { return target == ErrCopier }

func (e *CopierError) Unwrap() error { return e.Err }
