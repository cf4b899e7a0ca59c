package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
)

// Application error codes. They map domain failures onto http status
// codes in ReturnError, without the services knowing about http.
const (
	ECONFLICT     = "conflict"
	EINTERNAL     = "internal"
	EINVALID      = "invalid"
	ENOTFOUND     = "not_found"
	EUNAUTHORIZED = "unauthorized"
)

// Errors of the follow graph. They are fixed instances so that callers
// can match them with errors.Is.
var (
	// SelfFollow is returned when a user attempts to follow themselves.
	// It is raised before any database access happens.
	SelfFollow = &Error{Code: EINVALID, Message: "You cannot follow yourself."}
	// AlreadyFollowing is returned when the follow edge already exists.
	AlreadyFollowing = &Error{Code: ECONFLICT, Message: "You already follow this user."}
	// NotFollowing is returned when an unfollow finds no follow edge.
	NotFollowing = &Error{Code: ECONFLICT, Message: "You don't follow this user."}
	// UserNotFound is returned when either side of a follow does not exist.
	UserNotFound = &Error{Code: ENOTFOUND, Message: "The user does not exist."}
	// FollowFailed is returned when a follow or unfollow transaction kept
	// conflicting with concurrent writes and ran out of retries.
	FollowFailed = &Error{Code: EINTERNAL, Message: "The follow operation could not be completed. Please try again."}
	// FetchFailed is returned when a feed page could not be loaded.
	FetchFailed = &Error{Code: EINTERNAL, Message: "The feed could not be loaded."}
)

// Error is an application error with a machine-readable code and a
// human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("chatter error: code=%s message=%s", e.Code, e.Message)
}

// Errorf returns a new Error with the given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode returns the code of an application error,
// or EINTERNAL for any other error.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Code
	}
	var m modelError
	if errors.As(err, &m) {
		return EINVALID
	}
	return EINTERNAL
}

// ErrorMessage returns the message of an application error, the public
// message of a model error, or a generic message for anything else.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Message
	}
	var m modelError
	if errors.As(err, &m) {
		return m.Public()
	}
	return "An internal error has occurred."
}

// statusCodes maps application error codes onto http status codes.
var statusCodes = map[string]int{
	ECONFLICT:     http.StatusConflict,
	EINVALID:      http.StatusBadRequest,
	ENOTFOUND:     http.StatusNotFound,
	EUNAUTHORIZED: http.StatusUnauthorized,
	EINTERNAL:     http.StatusInternalServerError,
}

// ErrorStatusCode returns the http status code for an application error code.
func ErrorStatusCode(code string) int {
	if status, ok := statusCodes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ReturnError writes an error to the response as json. Internal errors
// get logged and their message replaced, everything else is passed on
// to the client as-is.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// LogError logs an error together with the request method and url.
func LogError(r *http.Request, err error) {
	log.Printf("[http] error: %s %s: %s", r.Method, r.URL.Path, err)
}
