package tembang

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Search and browse pagination bounds, as enforced by the upstream API.
const (
	MaxPageLimit     = 100
	DefaultPageLimit = 25
)

var mbidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// entityTypes is the closed set of MusicBrainz entities LookupByMBID
// accepts.
var entityTypes = map[string]struct{}{
	"artist": {}, "release": {}, "recording": {}, "release-group": {},
	"label": {}, "work": {}, "area": {}, "place": {}, "event": {},
	"instrument": {}, "series": {}, "url": {},
}

// ValidateMBID reports whether s is a well-formed MusicBrainz identifier
// (UUID shape).
func ValidateMBID(s string) bool {
	return mbidPattern.MatchString(s)
}

func checkMBID(param, mbid string) error {
	if !ValidateMBID(mbid) {
		return validationError(param, "invalid MBID format: "+mbid)
	}
	return nil
}

func checkPagination(limit, offset int) error {
	if limit < 1 || limit > MaxPageLimit {
		return validationError("limit", "limit must be between 1 and "+strconv.Itoa(MaxPageLimit))
	}
	if offset < 0 {
		return validationError("offset", "offset must be non-negative")
	}
	return nil
}

func (c *Client) search(ctx context.Context, entity, query string, limit, offset int) (json.RawMessage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, validationError("query", "query cannot be empty")
	}
	if err := checkPagination(limit, offset); err != nil {
		return nil, err
	}
	res, err := c.Dispatch(ctx, entity, Params{
		"query":  query,
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}, c.searchTTL)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}

// SearchArtist queries artists matching the Lucene query string.
func (c *Client) SearchArtist(ctx context.Context, query string, limit, offset int) (json.RawMessage, error) {
	return c.search(ctx, "artist", query, limit, offset)
}

// SearchRelease queries releases matching the Lucene query string.
func (c *Client) SearchRelease(ctx context.Context, query string, limit, offset int) (json.RawMessage, error) {
	return c.search(ctx, "release", query, limit, offset)
}

// SearchRecording queries recordings matching the Lucene query string.
func (c *Client) SearchRecording(ctx context.Context, query string, limit, offset int) (json.RawMessage, error) {
	return c.search(ctx, "recording", query, limit, offset)
}

// SearchReleaseGroup queries release groups matching the Lucene query
// string.
func (c *Client) SearchReleaseGroup(ctx context.Context, query string, limit, offset int) (json.RawMessage, error) {
	return c.search(ctx, "release-group", query, limit, offset)
}

func (c *Client) lookup(ctx context.Context, entity, mbid string, inc []string) (json.RawMessage, error) {
	if err := checkMBID("mbid", mbid); err != nil {
		return nil, err
	}
	params := Params{}
	if len(inc) > 0 {
		params["inc"] = strings.Join(inc, "+")
	}
	res, err := c.Dispatch(ctx, entity+"/"+mbid, params, c.lookupTTL)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}

// LookupArtist fetches an artist by MBID; inc names extra data to embed,
// e.g. "releases" or "recordings".
func (c *Client) LookupArtist(ctx context.Context, mbid string, inc []string) (json.RawMessage, error) {
	return c.lookup(ctx, "artist", mbid, inc)
}

// LookupRelease fetches a release by MBID.
func (c *Client) LookupRelease(ctx context.Context, mbid string, inc []string) (json.RawMessage, error) {
	return c.lookup(ctx, "release", mbid, inc)
}

// LookupRecording fetches a recording by MBID.
func (c *Client) LookupRecording(ctx context.Context, mbid string, inc []string) (json.RawMessage, error) {
	return c.lookup(ctx, "recording", mbid, inc)
}

// LookupReleaseGroup fetches a release group by MBID.
func (c *Client) LookupReleaseGroup(ctx context.Context, mbid string, inc []string) (json.RawMessage, error) {
	return c.lookup(ctx, "release-group", mbid, inc)
}

// LookupByMBID fetches any entity from the closed entity type set.
func (c *Client) LookupByMBID(ctx context.Context, entityType, mbid string, inc []string) (json.RawMessage, error) {
	if _, ok := entityTypes[entityType]; !ok {
		return nil, validationError("entityType", "invalid entity type: "+entityType)
	}
	return c.lookup(ctx, entityType, mbid, inc)
}

// BrowseArtistReleases lists releases by an artist, optionally filtered
// by release type ("album", "single", ...) and status ("official", ...).
func (c *Client) BrowseArtistReleases(ctx context.Context, artistMBID string, limit, offset int, releaseTypes, releaseStatuses []string) (json.RawMessage, error) {
	if err := checkMBID("artist", artistMBID); err != nil {
		return nil, err
	}
	if err := checkPagination(limit, offset); err != nil {
		return nil, err
	}
	params := Params{
		"artist": artistMBID,
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}
	if len(releaseTypes) > 0 {
		params["type"] = strings.Join(releaseTypes, "|")
	}
	if len(releaseStatuses) > 0 {
		params["status"] = strings.Join(releaseStatuses, "|")
	}
	res, err := c.Dispatch(ctx, "release", params, c.browseTTL)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}

// BrowseArtistRecordings lists recordings by an artist.
func (c *Client) BrowseArtistRecordings(ctx context.Context, artistMBID string, limit, offset int) (json.RawMessage, error) {
	if err := checkMBID("artist", artistMBID); err != nil {
		return nil, err
	}
	if err := checkPagination(limit, offset); err != nil {
		return nil, err
	}
	res, err := c.Dispatch(ctx, "recording", Params{
		"artist": artistMBID,
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}, c.browseTTL)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}
