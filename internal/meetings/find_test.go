package meetings_test

import (
	"context"
	"testing"

	"github.com/drewfead/meetplan/internal/meetings"
	"github.com/drewfead/meetplan/pkg/fetchtest"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/structpb"
)

// findMeetingTimes calls the fetcher with the find-meeting-times URL, decodes
// the result and returns the diffs of the recorded calls and of the decoded
// data against want. Empty diffs mean both checks hold.
func findMeetingTimes(t *testing.T, fake *fetchtest.Fake, want map[string]any) (callDiff, dataDiff string) {
	t.Helper()
	ctx := context.Background()

	res, err := fake.Fetch(ctx, meetings.FindMeetingTimesPath)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	data, err := res.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	wantData, err := structpb.NewStruct(want)
	if err != nil {
		t.Fatalf("failed to build expected data: %v", err)
	}

	callDiff = cmp.Diff([]fetchtest.Call{{URL: "/api/findMeetingTimes"}}, fake.Calls())
	dataDiff = cmp.Diff(wantData, data, protocmp.Transform())
	return callDiff, dataDiff
}

func TestFindMeetingTimesAPIReturnsStubbedSlots(t *testing.T) {
	response := map[string]any{"slots": []any{"09:00"}}
	fake := fetchtest.New().Resolve(response)

	callDiff, dataDiff := findMeetingTimes(t, fake, response)

	if callDiff != "" {
		t.Errorf("fetch calls mismatch (-want +got):\n%s", callDiff)
	}
	if dataDiff != "" {
		t.Errorf("decoded data mismatch (-want +got):\n%s", dataDiff)
	}
}

func TestFindMeetingTimesAPI_Repeatable(t *testing.T) {
	response := map[string]any{"slots": []any{"09:00"}}

	for i := 0; i < 3; i++ {
		fake := fetchtest.New().Resolve(response)
		callDiff, dataDiff := findMeetingTimes(t, fake, response)
		if callDiff != "" || dataDiff != "" {
			t.Fatalf("run %d: calls diff:\n%s\ndata diff:\n%s", i, callDiff, dataDiff)
		}
	}
}

func TestFindMeetingTimesAPI_ShapeMismatch(t *testing.T) {
	fake := fetchtest.New().Resolve(map[string]any{"slots": []any{}})

	callDiff, dataDiff := findMeetingTimes(t, fake, map[string]any{"slots": []any{"09:00"}})

	if callDiff != "" {
		t.Errorf("fetch calls mismatch (-want +got):\n%s", callDiff)
	}
	if dataDiff == "" {
		t.Error("expected a data mismatch when the stub resolves an empty slot list")
	}
}
