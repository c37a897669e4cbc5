// Package services defines the [PlaylistService] and [GenreProvider]
// interfaces and implements them against the Tidal and Spotify HTTP APIs.
//
// # Playlist operations
//
// [TidalService] wraps the Tidal v1 API for the operations the batch needs:
// listing playlists, reading tracks in playlist-native order, appending and
// removing tracks, and managing favorites. All calls go through a shared
// doRequest helper that applies the per-provider rate limiter, the retry
// policy, and maps HTTP status codes onto the shared error taxonomy.
//
// # Genre resolution
//
// Two providers implement [GenreProvider]:
//   - [TidalGenreClient] : Tidal v2 catalog API, track → genre relationship
//     plus genre-id → name lookups with an in-run name cache
//   - [SpotifyGenreClient] : client-credentials authenticated artist search,
//     used as the fallback provider
//
// Both providers write through to a persistent [store.GenreCache], including
// an explicit empty entry for "no genre data" so permanently missing data is
// never re-queried.
//
// # Error handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] / [shared.ErrAuthFailed] : session invalid
//   - [shared.ErrPlaylistNotFound] / [shared.ErrTrackNotFound] : 404 responses
//   - [shared.ErrRateLimited] : 429 responses, retried per [RetryPolicy]
//   - [shared.ErrTransient] : transport-level failures, surfaced per call
package services
