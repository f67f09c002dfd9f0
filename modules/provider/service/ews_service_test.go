package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roomdisplay/core/config"
	"roomdisplay/core/errors"
)

func newEWSTestServer(t *testing.T, handler http.HandlerFunc) *EWSService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEWSService(config.EWSConfig{
		URL:      srv.URL,
		Username: "svc-rooms",
		Password: "secret",
	})
}

const ewsFindItemResponse = `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <m:FindItemResponse xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages"
                        xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">
      <m:ResponseMessages>
        <m:FindItemResponseMessage ResponseClass="Success">
          <m:ResponseCode>NoError</m:ResponseCode>
          <m:RootFolder TotalItemsInView="2">
            <t:Items>
              <t:CalendarItem>
                <t:ItemId Id="item-2" ChangeKey="ck-2"/>
                <t:Subject>Afternoon</t:Subject>
                <t:Sensitivity>Normal</t:Sensitivity>
                <t:Start>2025-03-10T14:00:00Z</t:Start>
                <t:End>2025-03-10T15:00:00Z</t:End>
                <t:Organizer><t:Mailbox><t:Name>Bob</t:Name></t:Mailbox></t:Organizer>
              </t:CalendarItem>
              <t:CalendarItem>
                <t:ItemId Id="item-1" ChangeKey="ck-1"/>
                <t:Subject>Morning</t:Subject>
                <t:Sensitivity>Private</t:Sensitivity>
                <t:Start>2025-03-10T09:00:00Z</t:Start>
                <t:End>2025-03-10T10:30:00Z</t:End>
                <t:Organizer><t:Mailbox><t:Name>Alice</t:Name></t:Mailbox></t:Organizer>
              </t:CalendarItem>
            </t:Items>
          </m:RootFolder>
        </m:FindItemResponseMessage>
      </m:ResponseMessages>
    </m:FindItemResponse>
  </s:Body>
</s:Envelope>`

const ewsAccessDeniedResponse = `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <m:FindItemResponse xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages">
      <m:ResponseMessages>
        <m:FindItemResponseMessage ResponseClass="Error">
          <m:ResponseCode>ErrorImpersonateUserDenied</m:ResponseCode>
          <m:MessageText>The account does not have permission to impersonate the requested user.</m:MessageText>
        </m:FindItemResponseMessage>
      </m:ResponseMessages>
    </m:FindItemResponse>
  </s:Body>
</s:Envelope>`

func TestEWSGetBusyIntervalsParsesAndSorts(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	var gotBody string
	svc := newEWSTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "svc-rooms" || pass != "secret" {
			t.Errorf("basic auth = %q/%q ok=%v", user, pass, ok)
		}
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, ewsFindItemResponse)
	})

	appts, appErr := svc.GetBusyIntervals(context.Background(), "aquarium@example.com", day, day.Add(24*time.Hour))
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(appts) != 2 {
		t.Fatalf("appointments = %d, want 2", len(appts))
	}
	if appts[0].ID != "item-1" || appts[1].ID != "item-2" {
		t.Fatalf("appointments not ascending by start: %+v", appts)
	}
	if appts[0].Subject != "Morning" || appts[0].Organizer != "Alice" || !appts[0].Private {
		t.Fatalf("first appointment parsed wrong: %+v", appts[0])
	}
	if !appts[1].End.Equal(time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("end parsed wrong: %v", appts[1].End)
	}

	if !strings.Contains(gotBody, "ExchangeImpersonation") || !strings.Contains(gotBody, "aquarium@example.com") {
		t.Error("request did not impersonate the room mailbox")
	}
	if !strings.Contains(gotBody, `Version="Exchange2010_SP2"`) {
		t.Error("request missing server version header")
	}
}

func TestEWSImpersonationDeniedMapsToProviderAuth(t *testing.T) {
	svc := newEWSTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, ewsAccessDeniedResponse)
	})

	_, appErr := svc.GetBusyIntervals(context.Background(), "aquarium@example.com",
		time.Now(), time.Now().Add(time.Hour))
	if appErr == nil || appErr.Code != errors.ErrProviderAuth {
		t.Fatalf("expected %s, got %v", errors.ErrProviderAuth, appErr)
	}
}

func TestEWSUnauthorizedMapsToProviderAuth(t *testing.T) {
	svc := newEWSTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, appErr := svc.ListRoomLists(context.Background())
	if appErr == nil || appErr.Code != errors.ErrProviderAuth {
		t.Fatalf("expected %s, got %v", errors.ErrProviderAuth, appErr)
	}
}

func TestEWSPatchEventEndFetchesChangeKeyFirst(t *testing.T) {
	newEnd := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	var bodies []string
	svc := newEWSTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		if strings.Contains(string(raw), "GetItem") {
			fmt.Fprint(w, `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <m:GetItemResponse xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages"
                       xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">
      <m:ResponseMessages>
        <m:GetItemResponseMessage ResponseClass="Success">
          <m:ResponseCode>NoError</m:ResponseCode>
          <m:Items><t:CalendarItem><t:ItemId Id="item-1" ChangeKey="ck-fresh"/></t:CalendarItem></m:Items>
        </m:GetItemResponseMessage>
      </m:ResponseMessages>
    </m:GetItemResponse>
  </s:Body>
</s:Envelope>`)
			return
		}
		fmt.Fprint(w, `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <m:UpdateItemResponse xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages">
      <m:ResponseMessages>
        <m:UpdateItemResponseMessage ResponseClass="Success">
          <m:ResponseCode>NoError</m:ResponseCode>
        </m:UpdateItemResponseMessage>
      </m:ResponseMessages>
    </m:UpdateItemResponse>
  </s:Body>
</s:Envelope>`)
	})

	if appErr := svc.PatchEventEnd(context.Background(), "aquarium@example.com", "item-1", newEnd); appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}

	if len(bodies) != 2 {
		t.Fatalf("calls = %d, want 2 (GetItem then UpdateItem)", len(bodies))
	}
	if !strings.Contains(bodies[1], `ChangeKey="ck-fresh"`) {
		t.Error("UpdateItem did not carry the fresh ChangeKey")
	}
	if !strings.Contains(bodies[1], `FieldURI="calendar:End"`) {
		t.Error("UpdateItem did not target calendar:End")
	}
	if !strings.Contains(bodies[1], "2025-03-10T14:30:00Z") {
		t.Error("UpdateItem did not carry the new end time")
	}
	if !strings.Contains(bodies[1], `SendMeetingInvitationsOrCancellations="SendToNone"`) {
		t.Error("UpdateItem must not notify anyone")
	}
}

func TestEWSCreateEventSendsNoInvitations(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	var gotBody string
	svc := newEWSTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <m:CreateItemResponse xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages"
                          xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">
      <m:ResponseMessages>
        <m:CreateItemResponseMessage ResponseClass="Success">
          <m:ResponseCode>NoError</m:ResponseCode>
          <m:Items><t:CalendarItem><t:ItemId Id="created-1" ChangeKey="ck-1"/></t:CalendarItem></m:Items>
        </m:CreateItemResponseMessage>
      </m:ResponseMessages>
    </m:CreateItemResponse>
  </s:Body>
</s:Envelope>`)
	})

	id, appErr := svc.CreateEvent(context.Background(), "aquarium@example.com", "Standup <now>", now, now.Add(30*time.Minute), "")
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if id != "created-1" {
		t.Fatalf("event id = %q, want created-1", id)
	}
	if !strings.Contains(gotBody, `SendMeetingInvitations="SendToNone"`) {
		t.Error("CreateItem must not send invitations")
	}
	if !strings.Contains(gotBody, "Standup &lt;now&gt;") {
		t.Error("subject not XML-escaped")
	}
	if strings.Contains(gotBody, "RequiredAttendees") || strings.Contains(gotBody, "Resources>") {
		t.Error("CreateItem carries attendee or resource elements")
	}
}

func TestEWSResponseErrorMapping(t *testing.T) {
	tests := []struct {
		code string
		want errors.ErrorCode
	}{
		{"NoError", ""},
		{"", ""},
		{"ErrorAccessDenied", errors.ErrProviderAuth},
		{"ErrorImpersonateUserDenied", errors.ErrProviderAuth},
		{"ErrorNonExistentMailbox", errors.ErrProviderUnavailable},
		{"ErrorInvalidRequest", errors.ErrProviderUnavailable},
	}

	for _, tc := range tests {
		got := ewsResponseError(tc.code, "detail")
		if tc.want == "" {
			if got != nil {
				t.Fatalf("code %q: expected nil, got %v", tc.code, got)
			}
			continue
		}
		if got == nil || got.Code != tc.want {
			t.Fatalf("code %q: expected %s, got %v", tc.code, tc.want, got)
		}
	}
}
