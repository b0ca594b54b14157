// Package api defines the wire types of the daemon's HTTP API and a client
// for it. The daemon package serves these types; the CLI and the page-side
// bridge consume them.
//
// # Endpoints
//
//	POST /api/load       LoadRequest       -> StatusResponse
//	POST /api/extract    (empty)           -> TextResponse
//	POST /api/translate  TextRequest       -> TextResponse
//	POST /api/reconcile  ReconcileRequest  -> TextResponse
//	POST /api/prompt     TextRequest       -> PromptResponse
//	POST /api/navigate   NavigateRequest   -> StatusResponse
//	POST /api/tick       TickRequest       -> StatusResponse
//	POST /api/player     PlayerRequest     -> StatusResponse
//	POST /api/speech     SpeechRequest     -> StatusResponse
//	POST /api/settings   SettingsRequest   -> StatusResponse
//	GET  /api/status                       -> StatusResponse
//
// Failures carry ErrorResponse with an HTTP status derived from the error
// marker: not found 404, validation and configuration 400, stale 409,
// external 502.
package api
