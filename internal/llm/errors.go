package llm

import "errors"

var (
	ErrProviderUnavailable = errors.New("llm provider unavailable")
	ErrInferenceTimeout    = errors.New("llm inference timeout")
	ErrEmptyResponse       = errors.New("llm provider returned empty response")
)
