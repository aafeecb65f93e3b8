package core

// error_messages.go maps ledger errors to user-facing messages with a
// support code.
//
// Codes by category:
//
//	VAL001  Invalid input for an item or order field
//	INV001  Item name already in use by another item
//	INV002  Item not found
//	ORD001  Not enough stock for the requested quantity
//	ORD002  Order not found
//	IMP001  Import produced no valid rows
//	IMP002  Import file could not be read
//	IMP003  Import file exceeds the size limit
//	IMP004  Too many imports in progress
//	STO001  Changes could not be saved
//	REQ001  Request cancelled
//	REQ002  Request timed out
//	RATE001 Too many requests
//	ERR000  Anything else; check the logs for the technical error
//
// Typed ledger errors are matched first with errors.As. Remaining errors
// fall through to a case-insensitive substring table where the first
// matching pattern wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is consulted only after the typed checks in MapError.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Import file exceeds the size limit",
			Action:  "Split the file into smaller parts",
			Code:    "IMP003",
		},
	},
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP004",
		},
	},
	{
		pattern: "save snapshot",
		msg: UserMessage{
			Message: "Changes could not be saved",
			Action:  "Nothing was changed. Please try again",
			Code:    "STO001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message. A nil error maps
// to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		valErr   *ValidationError
		conflict *ConflictError
		notFound *NotFoundError
		stockErr *InsufficientStockError
		impErr   *ImportParseError
	)
	switch {
	case errors.As(err, &valErr):
		return UserMessage{
			Message: capitalize(valErr.Error()),
			Action:  "Correct the value and submit again",
			Code:    "VAL001",
		}
	case errors.As(err, &conflict):
		return UserMessage{
			Message: fmt.Sprintf("An item named %q already exists", conflict.Key),
			Action:  "Choose a different name or edit the existing item",
			Code:    "INV001",
		}
	case errors.As(err, &notFound) && notFound.Kind == "order":
		return UserMessage{
			Message: "Order not found",
			Action:  "Refresh the order list",
			Code:    "ORD002",
		}
	case errors.As(err, &notFound):
		return UserMessage{
			Message: fmt.Sprintf("Item %q not found", notFound.ID),
			Action:  "Add the item to inventory first",
			Code:    "INV002",
		}
	case errors.As(err, &stockErr):
		return UserMessage{
			Message: fmt.Sprintf("Not enough stock. Available: %d", stockErr.Available),
			Action:  "Lower the quantity or restock the item",
			Code:    "ORD001",
		}
	case errors.As(err, &impErr) && impErr.Err != nil:
		if msg, ok := matchPattern(impErr.Err); ok {
			return msg
		}
		return UserMessage{
			Message: "Import file could not be read",
			Action:  "Check that the file is a UTF-8 CSV and try again",
			Code:    "IMP002",
		}
	case errors.As(err, &impErr):
		return UserMessage{
			Message: "No valid rows found in the import file",
			Action:  "Include a header with name and stock columns",
			Code:    "IMP001",
		}
	}

	if msg, ok := matchPattern(err); ok {
		return msg
	}
	return defaultMessage
}

func matchPattern(err error) (UserMessage, bool) {
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
