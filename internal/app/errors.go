package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUserNotFound      = errors.New("user not found")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrChatNotFound      = errors.New("chat not found")
	ErrChatExists        = errors.New("chat already exists for entry")
	ErrMessageEmpty      = errors.New("message content is empty")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrTaskEnqueue       = errors.New("task enqueue failed")
	ErrSessionNotPending = errors.New("session is not accepting answers")
)

// RateLimitMessage is what the user sees when a daily AI budget runs out.
const RateLimitMessage = "Rate limit exceeded for today. Please try again tomorrow."

// ApologyMessage is stored as the assistant turn when reply generation
// fails terminally.
const ApologyMessage = "I apologize, but I am having trouble connecting to my thoughts right now. (AI Error)"
