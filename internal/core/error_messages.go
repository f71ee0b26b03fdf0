package core

// error_messages.go translates technical errors into user-friendly messages
// with codes for support reference. When users encounter errors, they can
// quote the code to support staff for faster diagnosis.
//
// Error codes are grouped by category:
//
//	ROS001-ROS099  Roster parsing and validation
//	FILE001-FILE099  Uploaded file handling
//	EVT001-EVT099  Event creation and lookup
//	JOB001-JOB099  Generation job lifecycle
//	MAIL001-MAIL099  Certificate email delivery
//	DB001-DB099    Database connectivity and constraints
//	REQ001-REQ099  Request cancellation and timeouts
//	RATE001        Request throttling
//	ERR000         Fallback when no pattern matches
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so more specific patterns are listed before general
// ones. When a user reports ERR000, check application logs for the original
// technical error.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Patterns are matched using strings.Contains, so partial matches work.
// The first matching pattern wins, so order matters:
//   - More specific patterns should come before general ones
//   - Multiple patterns can map to the same error code
var errorPatterns = []errorPattern{
	// =========================================================================
	// Roster Validation Errors (ROS001-ROS004)
	// These errors occur when an uploaded roster fails validation.
	// =========================================================================
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "The roster is missing one or more required columns",
			Action:  "The header row must include name, certification_id and email. Download the template for reference",
			Code:    "ROS001",
		},
	},
	{
		pattern: "at least one data row",
		msg: UserMessage{
			Message: "The roster has no data rows",
			Action:  "Add at least one recipient below the header row",
			Code:    "ROS002",
		},
	},
	{
		pattern: "duplicate certification_id",
		msg: UserMessage{
			Message: "The roster contains a duplicate certification ID",
			Action:  "Certification IDs must be unique. Fix the duplicated row and upload again",
			Code:    "ROS003",
		},
	},
	{
		pattern: "no valid recipients",
		msg: UserMessage{
			Message: "No usable recipients were found in the roster",
			Action:  "Every row was skipped. Check that rows have a name and a certification ID",
			Code:    "ROS004",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE003)
	// These errors occur when handling the uploaded roster file.
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The roster file exceeds the size limit",
			Action:  "Split the roster into smaller files and upload them separately",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please choose a roster CSV to upload",
			Code:    "FILE002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a roster CSV with data rows",
			Code:    "FILE003",
		},
	},

	// =========================================================================
	// Event Errors (EVT001-EVT003)
	// These errors occur when creating or validating events.
	// =========================================================================
	{
		pattern: "title is required",
		msg: UserMessage{
			Message: "The event needs a title",
			Action:  "Enter the course or ceremony name",
			Code:    "EVT001",
		},
	},
	{
		pattern: "issuer is required",
		msg: UserMessage{
			Message: "The event needs an issuer",
			Action:  "Enter the organization issuing the certificates",
			Code:    "EVT002",
		},
	},
	{
		pattern: "invalid hex color",
		msg: UserMessage{
			Message: "The accent color is not a valid hex color",
			Action:  "Use #RGB or #RRGGBB format, for example #1a365d",
			Code:    "EVT003",
		},
	},

	// =========================================================================
	// Job Errors (JOB001-JOB005)
	// These errors occur during the generation job lifecycle.
	// =========================================================================
	{
		pattern: "no recipients",
		msg: UserMessage{
			Message: "The event has no recipients yet",
			Action:  "Upload a roster before starting generation",
			Code:    "JOB001",
		},
	},
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "The system is busy with other generation jobs",
			Action:  "Please wait a moment and try again",
			Code:    "JOB002",
		},
	},
	{
		pattern: "job not found",
		msg: UserMessage{
			Message: "Generation job not found",
			Action:  "The job may have expired. Check the job history for its final state",
			Code:    "JOB003",
		},
	},
	{
		pattern: "only complete jobs",
		msg: UserMessage{
			Message: "This job has not finished successfully",
			Action:  "Wait for the job to complete before emailing certificates",
			Code:    "JOB004",
		},
	},
	{
		pattern: "archive is no longer available",
		msg: UserMessage{
			Message: "The certificate archive has been cleaned up",
			Action:  "Run generation again to produce a fresh archive",
			Code:    "JOB005",
		},
	},

	// =========================================================================
	// Email Errors (MAIL001)
	// These errors occur when sending certificates by email.
	// =========================================================================
	{
		pattern: "email delivery is not configured",
		msg: UserMessage{
			Message: "Email delivery is not configured on this server",
			Action:  "Download the archive instead, or ask an administrator to configure SMTP",
			Code:    "MAIL001",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB005)
	// These errors occur when database operations fail.
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Please try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your roster",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "The database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// These errors occur when a request is cancelled or times out.
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Try a smaller roster or check your connection",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Please try again later",
			Code:    "REQ002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// These errors occur when request limits are exceeded.
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},

	// =========================================================================
	// Generic lookup failures
	// Kept last so the specific "job not found" pattern wins first.
	// =========================================================================
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "The requested record was not found",
			Action:  "Check the ID and try again",
			Code:    "EVT004",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := errors.New("duplicate certification_id \"C-1\" on row 4")
//	msg := MapError(err)
//	// msg.Code == "ROS003"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The roster contains a duplicate certification ID (Code: ROS003). Certification IDs must be unique. Fix the duplicated row and upload again"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean
// message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a
// user-friendly message. The returned UserError preserves the original
// technical error for logging via Unwrap(), while providing a clean user
// message via Error().
//
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
