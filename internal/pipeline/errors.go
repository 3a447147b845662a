package pipeline

// errors.go maps technical failures to user-facing messages with support
// codes. Policy violations carry their own codes; everything else is
// matched by error text pattern, most specific first.
//
// Code ranges:
//
//	POL001-POL099  policy violations (from internal/policy)
//	ENC001-ENC099  encryption and key-material failures
//	NET001-NET099  collector delivery failures
//	SRC001-SRC099  row source failures

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cardstream/ingest/internal/cipher"
	"github.com/cardstream/ingest/internal/policy"
)

// UserMessage is what an operator sees when a run is blocked or fails.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "collector returned",
		msg: UserMessage{
			Message: "The collector rejected a chunk",
			Action:  "Check the collector response and re-run; a fresh key is generated automatically",
			Code:    "NET001",
		},
	},
	{
		pattern: "deliver chunk",
		msg: UserMessage{
			Message: "A chunk could not be delivered to the collector",
			Action:  "Check network connectivity and the collector URL, then re-run",
			Code:    "NET002",
		},
	},
	{
		pattern: "generate content key",
		msg: UserMessage{
			Message: "The system could not generate encryption key material",
			Action:  "This is a local system fault; check the host's randomness source",
			Code:    "ENC002",
		},
	},
	{
		pattern: "generate nonce",
		msg: UserMessage{
			Message: "The system could not generate encryption key material",
			Action:  "This is a local system fault; check the host's randomness source",
			Code:    "ENC002",
		},
	},
	{
		pattern: "read csv",
		msg: UserMessage{
			Message: "The input file could not be read",
			Action:  "Verify the file is a valid CSV and try again",
			Code:    "SRC001",
		},
	},
	{
		pattern: "pull batch",
		msg: UserMessage{
			Message: "The input file could not be read",
			Action:  "Verify the file is a valid CSV and try again",
			Code:    "SRC001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "The upload failed unexpectedly",
	Action:  "Re-run with debug logging and contact support with the code",
	Code:    "GEN000",
}

// MapError converts any pipeline error into a user-facing message. Typed
// errors (policy violations, authentication failures) are matched first;
// remaining errors fall back to text patterns.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var v *policy.Violation
	if errors.As(err, &v) {
		return UserMessage{
			Message: v.Reason,
			Action:  "Adjust the column mapping and validate again",
			Code:    v.Code,
		}
	}
	if errors.Is(err, cipher.ErrAuthentication) {
		return UserMessage{
			Message: "A chunk failed authentication",
			Action:  "Do not retry with the same material; re-run to produce fresh chunks",
			Code:    "ENC001",
		}
	}

	text := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(text, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders a mapped error as a single display line:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
