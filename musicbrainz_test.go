package tembang

import (
	"context"
	"testing"
	"time"
)

const testMBID = "5b11f4ce-a62d-471e-81fc-a69a8278c7da"

func recordingTransport(got *struct {
	operation string
	params    Params
}) Transport {
	return TransportFunc(func(_ context.Context, operation string, params Params) (*UpstreamResponse, error) {
		got.operation = operation
		got.params = params
		return okResponse(`{"ok":true}`), nil
	})
}

func TestValidateMBID(t *testing.T) {
	valid := []string{
		testMBID,
		"F27EC8DB-AF05-4F36-916E-3D57F91ECF5E",
	}
	for _, s := range valid {
		if !ValidateMBID(s) {
			t.Errorf("ValidateMBID(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"not-an-mbid",
		"5b11f4ce-a62d-471e-81fc-a69a8278c7d",   // short
		"5b11f4ce-a62d-471e-81fc-a69a8278c7daa", // long
		"5b11f4cea62d471e81fca69a8278c7da",      // no dashes
		"zb11f4ce-a62d-471e-81fc-a69a8278c7da",  // non-hex
	}
	for _, s := range invalid {
		if ValidateMBID(s) {
			t.Errorf("ValidateMBID(%q) = true, want false", s)
		}
	}
}

func TestSearchArtistBuildsRequest(t *testing.T) {
	var got struct {
		operation string
		params    Params
	}
	client := newTestClient(t, recordingTransport(&got))

	payload, err := client.SearchArtist(context.Background(), "tag:gamelan", 50, 10)
	if err != nil {
		t.Fatalf("SearchArtist failed: %v", err)
	}
	if string(payload) != `{"ok":true}` {
		t.Errorf("Unexpected payload %q", payload)
	}
	if got.operation != "artist" {
		t.Errorf("Expected operation artist, got %q", got.operation)
	}
	if got.params["query"] != "tag:gamelan" || got.params["limit"] != "50" || got.params["offset"] != "10" {
		t.Errorf("Unexpected params %v", got.params)
	}
}

func TestSearchValidation(t *testing.T) {
	client := newTestClient(t, recordingTransport(&struct {
		operation string
		params    Params
	}{}))

	tests := []struct {
		name          string
		query         string
		limit, offset int
	}{
		{"EmptyQuery", "", 25, 0},
		{"BlankQuery", "   ", 25, 0},
		{"ZeroLimit", "q", 0, 0},
		{"NegativeLimit", "q", -1, 0},
		{"OversizedLimit", "q", MaxPageLimit + 1, 0},
		{"NegativeOffset", "q", 25, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.SearchArtist(context.Background(), tt.query, tt.limit, tt.offset)
			if KindOf(err) != KindValidation {
				t.Errorf("Expected Validation, got %v", err)
			}
		})
	}
}

func TestSearchEntities(t *testing.T) {
	var got struct {
		operation string
		params    Params
	}
	client := newTestClient(t, recordingTransport(&got))
	ctx := context.Background()

	calls := []struct {
		entity string
		run    func() error
	}{
		{"release", func() error { _, err := client.SearchRelease(ctx, "q1", 25, 0); return err }},
		{"recording", func() error { _, err := client.SearchRecording(ctx, "q2", 25, 0); return err }},
		{"release-group", func() error { _, err := client.SearchReleaseGroup(ctx, "q3", 25, 0); return err }},
	}
	for _, c := range calls {
		if err := c.run(); err != nil {
			t.Fatalf("Search %s failed: %v", c.entity, err)
		}
		if got.operation != c.entity {
			t.Errorf("Expected operation %q, got %q", c.entity, got.operation)
		}
	}
}

func TestLookupArtistBuildsRequest(t *testing.T) {
	var got struct {
		operation string
		params    Params
	}
	client := newTestClient(t, recordingTransport(&got))

	_, err := client.LookupArtist(context.Background(), testMBID, []string{"releases", "recordings"})
	if err != nil {
		t.Fatalf("LookupArtist failed: %v", err)
	}
	if got.operation != "artist/"+testMBID {
		t.Errorf("Unexpected operation %q", got.operation)
	}
	if got.params["inc"] != "releases+recordings" {
		t.Errorf("Expected inc joined with +, got %q", got.params["inc"])
	}
}

func TestLookupWithoutInc(t *testing.T) {
	var got struct {
		operation string
		params    Params
	}
	client := newTestClient(t, recordingTransport(&got))

	if _, err := client.LookupRelease(context.Background(), testMBID, nil); err != nil {
		t.Fatalf("LookupRelease failed: %v", err)
	}
	if _, ok := got.params["inc"]; ok {
		t.Error("Empty inc list must not produce an inc parameter")
	}
}

func TestLookupRejectsMalformedMBID(t *testing.T) {
	client := newTestClient(t, recordingTransport(&struct {
		operation string
		params    Params
	}{}))

	_, err := client.LookupRecording(context.Background(), "bogus", nil)
	if KindOf(err) != KindValidation {
		t.Errorf("Expected Validation, got %v", err)
	}
}

func TestLookupByMBIDEntityTypes(t *testing.T) {
	var got struct {
		operation string
		params    Params
	}
	client := newTestClient(t, recordingTransport(&got))

	if _, err := client.LookupByMBID(context.Background(), "label", testMBID, nil); err != nil {
		t.Fatalf("LookupByMBID failed: %v", err)
	}
	if got.operation != "label/"+testMBID {
		t.Errorf("Unexpected operation %q", got.operation)
	}

	_, err := client.LookupByMBID(context.Background(), "planet", testMBID, nil)
	if KindOf(err) != KindValidation {
		t.Errorf("Expected Validation for unknown entity type, got %v", err)
	}
}

func TestBrowseArtistReleasesBuildsRequest(t *testing.T) {
	var got struct {
		operation string
		params    Params
	}
	client := newTestClient(t, recordingTransport(&got))

	_, err := client.BrowseArtistReleases(context.Background(), testMBID, 25, 0,
		[]string{"album", "ep"}, []string{"official"})
	if err != nil {
		t.Fatalf("BrowseArtistReleases failed: %v", err)
	}
	if got.operation != "release" {
		t.Errorf("Unexpected operation %q", got.operation)
	}
	if got.params["artist"] != testMBID {
		t.Errorf("Expected artist param, got %v", got.params)
	}
	if got.params["type"] != "album|ep" {
		t.Errorf("Expected type joined with |, got %q", got.params["type"])
	}
	if got.params["status"] != "official" {
		t.Errorf("Unexpected status %q", got.params["status"])
	}
}

func TestBrowseArtistRecordingsValidation(t *testing.T) {
	client := newTestClient(t, recordingTransport(&struct {
		operation string
		params    Params
	}{}))

	if _, err := client.BrowseArtistRecordings(context.Background(), "bad", 25, 0); KindOf(err) != KindValidation {
		t.Errorf("Expected Validation for bad MBID, got %v", err)
	}
	if _, err := client.BrowseArtistRecordings(context.Background(), testMBID, 500, 0); KindOf(err) != KindValidation {
		t.Errorf("Expected Validation for oversized limit, got %v", err)
	}
}

func TestSearchUsesSearchTTL(t *testing.T) {
	var got struct {
		operation string
		params    Params
	}
	client := newTestClient(t, recordingTransport(&got), WithSearchTTL(time.Minute))

	if _, err := client.SearchArtist(context.Background(), "q", 25, 0); err != nil {
		t.Fatalf("SearchArtist failed: %v", err)
	}
	if client.cache.Len() != 1 {
		t.Errorf("Expected search result cached, cache size %d", client.cache.Len())
	}
}
