package core

// # Error Codes Reference
//
// Errors shown to visitors carry a code that can be quoted when reporting a
// problem. Codes are grouped by category:
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Not loaded: Search or summary attempted before loading data
//	         Action: Please load the data by clicking on Load Data button
//	         Patterns: "dataset not loaded"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid identifier: ID card number is not 13 digits
//	         Action: Enter 13 digits without dashes
//	         Patterns: "invalid identifier format"
//
//	VAL002 - Unknown search mode
//	         Patterns: "unknown search mode"
//
//	VAL003 - Unknown chart
//	         Patterns: "unknown chart dimension"
//
// # Load Errors (LOAD001-LOAD099)
//
//	LOAD001 - Missing columns: The file lacks Name, Registration No., Gender or Province
//	          Patterns: "missing required column"
//
//	LOAD002 - Empty file
//	          Patterns: "empty file"
//
//	LOAD003 - Too large: Download exceeded the configured size cap
//	          Patterns: "dataset exceeds"
//
//	LOAD004 - Invalid CSV: The downloaded file could not be parsed
//	          Patterns: "invalid csv", "load dataset: parse"
//
//	LOAD005 - Download failed: The data source could not be reached
//	          Patterns: "load dataset: fetch"
//
//	LOAD006 - Busy: Too many loads in progress
//	          Patterns: "too many concurrent loads"
//
// # Summary Errors (SUM001-SUM099)
//
//	SUM001 - Unexpected gender: Data holds gender values other than M and F
//	         Patterns: "unexpected gender category"
//
// # Request Errors (REQ001-REQ099, RATE001)
//
//	REQ001 - Request cancelled ("context canceled")
//	REQ002 - Request timed out ("context deadline exceeded")
//	RATE001 - Too many requests ("rate limit")
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application logs for the
// technical error.
//
// Load errors and the sentinels in errors.go are recognized by type first.
// Anything else is matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones. Load
// errors read "load dataset: <op> <url>: <cause>", which is why the column
// and size patterns are listed ahead of the op patterns.

import (
	"context"
	"errors"
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

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	// Session
	{
		pattern: "dataset not loaded",
		msg: UserMessage{
			Message: "No data has been loaded yet",
			Action:  "Please load the data by clicking on Load Data button",
			Code:    "SES001",
		},
	},

	// Validation
	{
		pattern: "invalid identifier format",
		msg: UserMessage{
			Message: "Enter the ID card number in correct format",
			Action:  "Use the 13 digits without dashes",
			Code:    "VAL001",
		},
	},
	{
		pattern: "unknown search mode",
		msg: UserMessage{
			Message: "Unknown search option",
			Action:  "Choose Full Name, ID Card Number or First/Last Name",
			Code:    "VAL002",
		},
	},
	{
		pattern: "unknown chart dimension",
		msg: UserMessage{
			Message: "Unknown chart",
			Action:  "Choose the gender or province chart",
			Code:    "VAL003",
		},
	},

	// Load
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "The downloaded file is missing required columns",
			Action:  "Check that the data source provides Name, Registration No., Gender and Province",
			Code:    "LOAD001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The downloaded file is empty",
			Action:  "Check the data source and try loading again",
			Code:    "LOAD002",
		},
	},
	{
		pattern: "dataset exceeds",
		msg: UserMessage{
			Message: "The downloaded file is larger than allowed",
			Action:  "Raise DATASET_MAX_BYTES or use a smaller data source",
			Code:    "LOAD003",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The downloaded file is not a valid CSV",
			Action:  "Check the data source and try loading again",
			Code:    "LOAD004",
		},
	},
	{
		pattern: "load dataset: parse",
		msg: UserMessage{
			Message: "The downloaded file could not be read",
			Action:  "Check the data source and try loading again",
			Code:    "LOAD004",
		},
	},
	{
		pattern: "load dataset: fetch",
		msg: UserMessage{
			Message: "Unable to download the data",
			Action:  "Check your connection and try loading again",
			Code:    "LOAD005",
		},
	},
	{
		pattern: "too many concurrent loads",
		msg: UserMessage{
			Message: "The server is busy loading data for other visitors",
			Action:  "Please wait a moment and try again",
			Code:    "LOAD006",
		},
	},

	// Summary
	{
		pattern: "unexpected gender category",
		msg: UserMessage{
			Message: "The data contains gender values other than M and F",
			Action:  "Set SUMMARY_GENDER_POLICY=tolerate to count them separately",
			Code:    "SUM001",
		},
	},

	// Request
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
			Action:  "Please try again later",
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

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again",
	Code:    "ERR000",
}

// sentinelPatterns ties errors matched with errors.Is to their pattern.
// Several of these errors quote user input, so they must never reach the
// text match below.
var sentinelPatterns = []struct {
	target  error
	pattern string
}{
	{ErrNotLoaded, "dataset not loaded"},
	{ErrInvalidFormat, "invalid identifier format"},
	{ErrUnknownMode, "unknown search mode"},
	{ErrUnknownDimension, "unknown chart dimension"},
	{ErrUnexpectedCategory, "unexpected gender category"},
	{ErrTooManyLoads, "too many concurrent loads"},
	{context.Canceled, "context canceled"},
	{context.DeadlineExceeded, "context deadline exceeded"},
}

// MapError converts a technical error to a user-friendly message.
//
// A *LoadError is matched on its own text, which carries no user input.
// Otherwise known sentinels are matched with errors.Is, and only then does
// the first matching text pattern win. ERR000 is returned if nothing matches.
//
// Example:
//
//	msg := MapError(ErrNotLoaded)
//	// msg.Code == "SES001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var le *LoadError
	if errors.As(err, &le) {
		return matchPattern(le.Error())
	}

	for _, sp := range sentinelPatterns {
		if errors.Is(err, sp.target) {
			return matchPattern(sp.pattern)
		}
	}

	return matchPattern(err.Error())
}

func matchPattern(text string) UserMessage {
	text = strings.ToLower(text)
	for _, ep := range errorPatterns {
		if strings.Contains(text, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}
