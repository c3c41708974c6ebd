// Package fetchtest provides test doubles for fetch.Fetcher.
//
// # Fake
//
// Fake is an in-memory Fetcher. It is programmed once and then resolves every
// call with the same canned response, whatever URL it is given. Every call is
// recorded for later assertions:
//
//	fake := fetchtest.New()
//	fake.Resolve(map[string]any{"slots": []string{"09:00"}})
//
//	res, err := fake.Fetch(ctx, "/api/findMeetingTimes")
//	data, err := res.JSON()
//
//	fake.Calls() // []fetchtest.Call{{URL: "/api/findMeetingTimes"}}
//
// A Fake is passed to the code under test explicitly; there is no package-level
// state to patch or restore.
//
// # Server
//
// Server is an httptest server that answers GET /api/findMeetingTimes with a
// programmed JSON body. Use it to exercise fetch.HTTPFetcher or the CLI over a
// real HTTP round trip:
//
//	server := fetchtest.NewServer()
//	defer server.Close()
//	server.SetSlots("09:00", "10:30")
//
//	f, err := fetch.NewHTTPFetcher(ctx, server.URL)
//
// # Features
//
//   - Thread-safe: Fake and Server guard their state with a mutex
//   - Failure injection: Reject and ResolveStatus simulate transport and HTTP errors
//   - Reset: both doubles can be cleared between subtests
package fetchtest
