// Package commands is the verb surface the control panel, CLI, and daemon
// drive: load, extract, translate, reconcile, copy prompt, navigate, speech
// settings, and status.
//
// Service composes the session manager, the host page, the persisted store,
// the subtitle extractor, and a translation provider factory. Remote calls
// (translate, extract, store) may outlive the session they were issued for;
// Translate captures the session token before the call and discards the
// result with ErrStaleContext when the token changed in the meantime.
//
// Persisted settings override configuration for provider, credential,
// target language, voice, rate, and the speech toggle.
package commands
