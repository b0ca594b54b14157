// Package translate sends subtitle text to a remote language model and
// returns the translated document.
//
// # Providers
//
// OpenAI speaks the chat completions protocol (any OpenAI-compatible
// endpoint works through base_url). Gemini speaks the generateContent
// protocol with the key in the query string. New picks one from the
// translation.provider setting so callers only see the Provider interface.
//
// # Prompt
//
// BuildPrompt embeds the course context and asks for a concise translation
// that keeps the WEBVTT header and every timing line untouched. The same
// prompt backs the copy-prompt command for manual translation.
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx and network timeouts with
// exponential backoff (base 1s, max 10s, translation.max_attempts tries).
// A Retry-After header overrides the computed delay. Context cancellation
// aborts retries immediately.
//
// # Errors
//
// Remote failures and unusable replies are *ProviderError values that match
// services.ErrExternal. Empty input is a services.ErrValidation error.
package translate
