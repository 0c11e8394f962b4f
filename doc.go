// Package tembang provides a rate-limited, cached access layer for the
// MusicBrainz web service:
//
//   - Interval rate limiting (one request per second by default, the
//     MusicBrainz budget), FIFO and process-wide
//   - Bounded LRU response cache with lazy TTL expiry, optionally backed
//     by Redis for shared deployments
//   - Retries with exponential backoff + jitter for transient failures,
//     honoring upstream Retry-After hints
//   - In-flight deduplication (concurrent identical misses share one
//     upstream call)
//   - A closed error taxonomy so callers can branch on stable kinds
//     instead of raw transport failures
//   - Prometheus metrics and pluggable structured logging
//
// Design goals:
//   - Small surface area: functional options configure everything
//   - Safe concurrent use of a single *Client instance
//   - Opaque payloads: the client throttles, caches and classifies, it
//     does not model the music data
//
// Typical usage:
//
//	client := tembang.New(
//	    tembang.WithUserAgent("myapp/1.0 (me@example.com)"),
//	    tembang.WithRateLimit(time.Second),
//	    tembang.WithMaxAttempts(3),
//	)
//	artists, err := client.SearchArtist(ctx, "radiohead", 25, 0)
//
// Lower-level callers can dispatch arbitrary operations directly:
//
//	res, err := client.Dispatch(ctx, "artist/"+mbid, tembang.Params{"inc": "releases"}, time.Hour)
package tembang
