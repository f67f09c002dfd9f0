package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roomdisplay/core/cache"
	"roomdisplay/core/config"
	"roomdisplay/core/errors"
	"roomdisplay/modules/provider/dto"
)

// newGraphTestServer serves a token endpoint plus the given API handlers and
// returns a GraphService pointed at it.
func newGraphTestServer(t *testing.T, handler http.HandlerFunc) (*GraphService, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/", handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := NewGraphService(config.GraphConfig{
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/token",
	}, cache.Noop())
	return svc, srv
}

func TestGraphListRoomListsFollowsPagination(t *testing.T) {
	var srvURL string
	svc, srv := newGraphTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			json.NewEncoder(w).Encode(dto.GraphRoomListsResponse{
				Value: []dto.GraphRoomList{{DisplayName: "Hamburg Rooms", EmailAddress: "hamburg@example.com"}},
			})
			return
		}
		json.NewEncoder(w).Encode(dto.GraphRoomListsResponse{
			Value:    []dto.GraphRoomList{{DisplayName: "Berlin Rooms", EmailAddress: "berlin@example.com"}},
			NextLink: srvURL + "/places/microsoft.graph.roomlist?page=2",
		})
	})
	srvURL = srv.URL

	lists, appErr := svc.ListRoomLists(context.Background())
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(lists) != 2 {
		t.Fatalf("lists = %d, want 2 across pages", len(lists))
	}
	if lists[0].Email != "berlin@example.com" || lists[1].Email != "hamburg@example.com" {
		t.Fatalf("lists out of order: %+v", lists)
	}
}

func TestGraphGetBusyIntervalsParsesAndOrders(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	svc, _ := newGraphTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Prefer"); got != `outlook.timezone="UTC"` {
			t.Errorf("prefer header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// Fractional seconds and out-of-order items, as Graph actually
		// returns them.
		json.NewEncoder(w).Encode(dto.GraphEventsResponse{
			Value: []dto.GraphEvent{
				{
					ID:      "late",
					Subject: "Afternoon",
					Start:   dto.GraphDateTime{DateTime: "2025-03-10T14:00:00.0000000", TimeZone: "UTC"},
					End:     dto.GraphDateTime{DateTime: "2025-03-10T15:00:00.0000000", TimeZone: "UTC"},
				},
				{
					ID:          "early",
					Subject:     "Morning",
					Sensitivity: "private",
					Start:       dto.GraphDateTime{DateTime: "2025-03-10T09:00:00.0000000", TimeZone: "UTC"},
					End:         dto.GraphDateTime{DateTime: "2025-03-10T10:30:00.0000000", TimeZone: "UTC"},
				},
			},
		})
	})

	appts, appErr := svc.GetBusyIntervals(context.Background(), "aquarium@example.com", day, day.Add(24*time.Hour))
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(appts) != 2 {
		t.Fatalf("appointments = %d, want 2", len(appts))
	}
	if appts[0].ID != "early" || appts[1].ID != "late" {
		t.Fatalf("appointments not ascending by start: %+v", appts)
	}
	if !appts[0].Start.Equal(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("fractional-second start parsed wrong: %v", appts[0].Start)
	}
	if !appts[0].Private {
		t.Fatal("private sensitivity not carried")
	}

	// A repeat of the same read is idempotent.
	again, appErr := svc.GetBusyIntervals(context.Background(), "aquarium@example.com", day, day.Add(24*time.Hour))
	if appErr != nil || len(again) != 2 {
		t.Fatalf("repeat read differs: %d %v", len(again), appErr)
	}
}

func TestGraphUnauthorizedMapsToProviderAuth(t *testing.T) {
	svc, _ := newGraphTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"InvalidAuthenticationToken"}}`, http.StatusUnauthorized)
	})

	_, appErr := svc.ListRoomLists(context.Background())
	if appErr == nil || appErr.Code != errors.ErrProviderAuth {
		t.Fatalf("expected %s, got %v", errors.ErrProviderAuth, appErr)
	}
}

func TestGraphServerErrorMapsToProviderUnavailable(t *testing.T) {
	svc, _ := newGraphTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, appErr := svc.ListRoomLists(context.Background())
	if appErr == nil || appErr.Code != errors.ErrProviderUnavailable {
		t.Fatalf("expected %s, got %v", errors.ErrProviderUnavailable, appErr)
	}
}

func TestGraphCreateEventPostsNoAttendees(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newGraphTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		for _, forbidden := range []string{"attendees", "locations", "resources"} {
			if _, ok := raw[forbidden]; ok {
				t.Errorf("request body carries %q", forbidden)
			}
		}
		if _, ok := raw["subject"]; !ok {
			t.Error("request body missing subject")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"created-1"}`)
	})

	id, appErr := svc.CreateEvent(context.Background(), "aquarium@example.com", "Standup", now, now.Add(30*time.Minute), "")
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if id != "created-1" {
		t.Fatalf("event id = %q, want created-1", id)
	}
}

func TestGraphPatchEventEndSendsUTC(t *testing.T) {
	newEnd := time.Date(2025, 3, 10, 15, 30, 0, 0, time.FixedZone("CET", 3600))
	svc, _ := newGraphTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		var body dto.GraphPatchEndRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.End.TimeZone != "UTC" || body.End.DateTime != "2025-03-10T14:30:00" {
			t.Errorf("patched end = %+v, want 14:30 UTC", body.End)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{}`)
	})

	if appErr := svc.PatchEventEnd(context.Background(), "aquarium@example.com", "ev-1", newEnd); appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
}

func TestGraphAccessTokenReusedWithoutRedis(t *testing.T) {
	tokenRequests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dto.GraphRoomListsResponse{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := NewGraphService(config.GraphConfig{
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/token",
	}, cache.Noop())

	for i := 0; i < 3; i++ {
		if _, appErr := svc.ListRoomLists(context.Background()); appErr != nil {
			t.Fatalf("call %d: unexpected error: %v", i, appErr)
		}
	}
	if tokenRequests != 1 {
		t.Fatalf("token requests = %d, want 1 (token reused in process)", tokenRequests)
	}
}

func TestParseGraphTime(t *testing.T) {
	tests := []struct {
		name string
		in   dto.GraphDateTime
		want time.Time
	}{
		{"fractional seconds", dto.GraphDateTime{DateTime: "2025-03-10T09:00:00.1234567", TimeZone: "UTC"},
			time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"no fraction", dto.GraphDateTime{DateTime: "2025-03-10T09:00:00", TimeZone: "UTC"},
			time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"missing zone defaults to UTC", dto.GraphDateTime{DateTime: "2025-03-10T09:00:00"},
			time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseGraphTime(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("parsed = %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := parseGraphTime(dto.GraphDateTime{DateTime: "not a time"}); err == nil {
		t.Fatal("expected parse error")
	}
}
