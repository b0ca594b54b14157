// Package store persists per-video subtitle text and user settings.
//
// Two backends implement Store:
//
//   - SQLite (default): a single database file under the data directory,
//     WAL journal, busy retry with exponential backoff, and a schema_version
//     table checked on open.
//   - Redis: subtitle text under "<prefix>:vtt:<video-id>" hashes and the
//     settings under the "<prefix>:settings" hash.
//
// Subtitle text is keyed by video id (see page.VideoID). Settings are a
// flat key/value record so both backends share one encoding.
package store
