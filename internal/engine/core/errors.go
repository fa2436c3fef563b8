// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"errors"
	"fmt"
	"strings"
)

// Code is the machine readable reason of a domain failure.
type Code string

const (
	CodeAuthenticationFailure Code = "AUTHENTICATION_FAILURE"
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeNotAMember            Code = "NOT_A_MEMBER"
	CodeInsufficientRole      Code = "INSUFFICIENT_ROLE"
	CodeResourceNotFound      Code = "RESOURCE_NOT_FOUND"
	CodeInvalidTransition     Code = "INVALID_TRANSITION"
	CodeActiveSprintsExist    Code = "ACTIVE_SPRINTS_EXIST"
	CodeProjectNotActionable  Code = "PROJECT_NOT_ACTIONABLE"
	CodeInvalidArgument       Code = "INVALID_ARGUMENT"
	CodeStorageFailure        Code = "STORAGE_FAILURE"
)

// Error is the typed failure returned by services. Optional fields carry
// the context of the decision that produced it.
type Error struct {
	Code       Code
	Message    string
	Capability string
	Role       string
	Current    string
	Requested  string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// sentinels for errors.Is
var (
	ErrAuthenticationFailure = &Error{Code: CodeAuthenticationFailure}
	ErrUserNotFound          = &Error{Code: CodeUserNotFound}
	ErrNotAMember            = &Error{Code: CodeNotAMember}
	ErrInsufficientRole      = &Error{Code: CodeInsufficientRole}
	ErrResourceNotFound      = &Error{Code: CodeResourceNotFound}
	ErrInvalidTransition     = &Error{Code: CodeInvalidTransition}
	ErrActiveSprintsExist    = &Error{Code: CodeActiveSprintsExist}
	ErrProjectNotActionable  = &Error{Code: CodeProjectNotActionable}
	ErrInvalidArgument       = &Error{Code: CodeInvalidArgument}
	ErrStorageFailure        = &Error{Code: CodeStorageFailure}
)

// CodeOf returns the code of the first *Error in err's chain, or
// CodeStorageFailure for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStorageFailure
}

func AuthenticationFailure(msg string, err error) *Error {
	return &Error{Code: CodeAuthenticationFailure, Message: msg, Err: err}
}

func UserNotFound(userID string) *Error {
	return &Error{Code: CodeUserNotFound, Message: fmt.Sprintf("user %s not found", userID)}
}

func NotAMember(capability string) *Error {
	return &Error{Code: CodeNotAMember, Message: "user has no access to the project", Capability: capability}
}

func InsufficientRole(capability, role string) *Error {
	return &Error{
		Code:       CodeInsufficientRole,
		Message:    fmt.Sprintf("role %s may not %s", role, capability),
		Capability: capability,
		Role:       role,
	}
}

func ResourceNotFound(kind, id string) *Error {
	return &Error{Code: CodeResourceNotFound, Message: fmt.Sprintf("%s %s not found", kind, id)}
}

func InvalidTransition(current, requested string) *Error {
	return &Error{
		Code:      CodeInvalidTransition,
		Message:   fmt.Sprintf("cannot move project from %s to %s", current, requested),
		Current:   current,
		Requested: requested,
	}
}

func ActiveSprintsExist(count int64) *Error {
	return &Error{Code: CodeActiveSprintsExist, Message: fmt.Sprintf("%d active sprint(s) must be completed first", count)}
}

func ProjectNotActionable(status string) *Error {
	return &Error{Code: CodeProjectNotActionable, Message: fmt.Sprintf("project is %s", status), Current: status}
}

func InvalidArgument(msg string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

// Storage wraps an infrastructure failure. Typed errors pass through.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Code: CodeStorageFailure, Message: "storage failure", Err: err}
}
