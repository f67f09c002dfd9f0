package service

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"roomdisplay/core/config"
	"roomdisplay/core/constants"
	"roomdisplay/core/errors"
	"roomdisplay/core/logger"
	"roomdisplay/modules/provider/dto"
	"roomdisplay/modules/room/entity"
)

const ewsTimeLayout = time.RFC3339

// EWSService speaks SOAP to an on-premise Exchange (2010 SP2 and later).
// Room-scoped operations impersonate the room mailbox, so the service
// account needs the ApplicationImpersonation role.
type EWSService struct {
	cfg    config.EWSConfig
	client *http.Client
}

func NewEWSService(cfg config.EWSConfig) *EWSService {
	return &EWSService{
		cfg:    cfg,
		client: &http.Client{Timeout: constants.DefaultTimeout},
	}
}

func (e *EWSService) call(ctx context.Context, envelope string, dest any) *errors.AppError {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL, bytes.NewBufferString(envelope))
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to create EWS request", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.SetBasicAuth(e.cfg.Username, e.cfg.Password)

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Error("EWSService:call:TransportError", "url", e.cfg.URL, "error", err)
		return errors.NewAppError(errors.ErrProviderUnavailable, "Exchange is unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return errors.NewAppError(errors.ErrProviderAuth, "Exchange rejected the credentials", nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewAppError(errors.ErrProviderUnavailable, "failed to read EWS response", err)
	}
	// EWS reports many operation errors inside a 500 SOAP fault; parse first.
	if err := xml.Unmarshal(body, dest); err != nil {
		logger.Error("EWSService:call:ParseError", "status", resp.StatusCode, "error", err)
		return errors.NewAppError(errors.ErrProviderUnavailable, "failed to parse EWS response", err)
	}
	if resp.StatusCode >= 400 {
		logger.Error("EWSService:call:HTTPError", "status", resp.StatusCode, "body", string(body))
		return errors.NewAppError(errors.ErrProviderUnavailable, fmt.Sprintf("Exchange error: %d", resp.StatusCode), nil)
	}
	return nil
}

func ewsResponseError(code, message string) *errors.AppError {
	if code == "" || code == "NoError" {
		return nil
	}
	if strings.Contains(code, "AccessDenied") || strings.Contains(code, "Impersonat") || strings.Contains(code, "Account") {
		return errors.NewAppError(errors.ErrProviderAuth, "Exchange denied access: "+code, nil)
	}
	if message == "" {
		message = code
	}
	return errors.NewAppError(errors.ErrProviderUnavailable, "Exchange operation failed: "+message, nil)
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func soapHeader(impersonate string) string {
	header := `<t:RequestServerVersion Version="Exchange2010_SP2"/>`
	if impersonate != "" {
		header += `<t:ExchangeImpersonation><t:ConnectingSID><t:SmtpAddress>` +
			xmlEscape(impersonate) + `</t:SmtpAddress></t:ConnectingSID></t:ExchangeImpersonation>`
	}
	return header
}

func soapEnvelope(impersonate, body string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"` +
		` xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"` +
		` xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages">` +
		`<soap:Header>` + soapHeader(impersonate) + `</soap:Header>` +
		`<soap:Body>` + body + `</soap:Body></soap:Envelope>`
}

func (e *EWSService) ListRoomLists(ctx context.Context) ([]entity.RoomList, *errors.AppError) {
	var env dto.EWSGetRoomListsEnvelope
	if appErr := e.call(ctx, soapEnvelope("", `<m:GetRoomLists/>`), &env); appErr != nil {
		return nil, appErr
	}
	if appErr := ewsResponseError(env.ResponseCode, env.MessageText); appErr != nil {
		return nil, appErr
	}

	out := make([]entity.RoomList, 0, len(env.RoomLists))
	for _, rl := range env.RoomLists {
		out = append(out, entity.RoomList{
			ID:    rl.EmailAddress,
			Name:  rl.Name,
			Email: rl.EmailAddress,
		})
	}
	return out, nil
}

func (e *EWSService) ListRooms(ctx context.Context, roomListID string) ([]entity.Room, *errors.AppError) {
	body := `<m:GetRooms><m:RoomList><t:EmailAddress>` + xmlEscape(roomListID) + `</t:EmailAddress></m:RoomList></m:GetRooms>`

	var env dto.EWSGetRoomsEnvelope
	if appErr := e.call(ctx, soapEnvelope("", body), &env); appErr != nil {
		return nil, appErr
	}
	if appErr := ewsResponseError(env.ResponseCode, env.MessageText); appErr != nil {
		return nil, appErr
	}

	out := make([]entity.Room, 0, len(env.Rooms))
	for _, r := range env.Rooms {
		if len(out) >= constants.MaxRoomsPerList {
			break
		}
		out = append(out, entity.Room{
			Name:     r.Name,
			Email:    r.EmailAddress,
			RoomList: roomListID,
		})
	}
	return out, nil
}

func (e *EWSService) GetBusyIntervals(ctx context.Context, roomID string, windowStart, windowEnd time.Time) ([]entity.Appointment, *errors.AppError) {
	body := `<m:FindItem Traversal="Shallow">` +
		`<m:ItemShape><t:BaseShape>Default</t:BaseShape></m:ItemShape>` +
		fmt.Sprintf(`<m:CalendarView MaxEntriesReturned="%d" StartDate="%s" EndDate="%s"/>`,
			constants.MaxAppointments,
			windowStart.UTC().Format(ewsTimeLayout),
			windowEnd.UTC().Format(ewsTimeLayout)) +
		`<m:ParentFolderIds><t:DistinguishedFolderId Id="calendar">` +
		`<t:Mailbox><t:EmailAddress>` + xmlEscape(roomID) + `</t:EmailAddress></t:Mailbox>` +
		`</t:DistinguishedFolderId></m:ParentFolderIds></m:FindItem>`

	var env dto.EWSFindItemEnvelope
	if appErr := e.call(ctx, soapEnvelope(roomID, body), &env); appErr != nil {
		return nil, appErr
	}
	if appErr := ewsResponseError(env.ResponseCode, env.MessageText); appErr != nil {
		return nil, appErr
	}

	out := make([]entity.Appointment, 0, len(env.Items))
	for _, item := range env.Items {
		start, err := time.Parse(ewsTimeLayout, item.Start)
		if err != nil {
			logger.Warn("EWSService:GetBusyIntervals:BadStart", "room", roomID, "value", item.Start, "error", err)
			continue
		}
		end, err := time.Parse(ewsTimeLayout, item.End)
		if err != nil {
			logger.Warn("EWSService:GetBusyIntervals:BadEnd", "room", roomID, "value", item.End, "error", err)
			continue
		}
		out = append(out, entity.Appointment{
			ID:        item.ItemID.ID,
			Subject:   item.Subject,
			Organizer: item.Organizer,
			Start:     start,
			End:       end,
			Private:   strings.EqualFold(item.Sensitivity, "Private"),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	if len(out) > constants.MaxAppointments {
		out = out[:constants.MaxAppointments]
	}
	return out, nil
}

func (e *EWSService) CreateEvent(ctx context.Context, roomID, subject string, start, end time.Time, description string) (string, *errors.AppError) {
	body := `<m:CreateItem SendMeetingInvitations="SendToNone">` +
		`<m:SavedItemFolderId><t:DistinguishedFolderId Id="calendar">` +
		`<t:Mailbox><t:EmailAddress>` + xmlEscape(roomID) + `</t:EmailAddress></t:Mailbox>` +
		`</t:DistinguishedFolderId></m:SavedItemFolderId>` +
		`<m:Items><t:CalendarItem>` +
		`<t:Subject>` + xmlEscape(subject) + `</t:Subject>` +
		`<t:Body BodyType="Text">` + xmlEscape(description) + `</t:Body>` +
		`<t:Start>` + start.UTC().Format(ewsTimeLayout) + `</t:Start>` +
		`<t:End>` + end.UTC().Format(ewsTimeLayout) + `</t:End>` +
		`</t:CalendarItem></m:Items></m:CreateItem>`

	var env dto.EWSCreateItemEnvelope
	if appErr := e.call(ctx, soapEnvelope(roomID, body), &env); appErr != nil {
		return "", appErr
	}
	if appErr := ewsResponseError(env.ResponseCode, env.MessageText); appErr != nil {
		return "", appErr
	}

	logger.Info("EWSService:CreateEvent:Created", "room", roomID, "event_id", env.ItemID.ID)
	return env.ItemID.ID, nil
}

func (e *EWSService) PatchEventEnd(ctx context.Context, roomID, eventID string, newEnd time.Time) *errors.AppError {
	// UpdateItem needs the current ChangeKey, so fetch the item first.
	getBody := `<m:GetItem><m:ItemShape><t:BaseShape>IdOnly</t:BaseShape></m:ItemShape>` +
		`<m:ItemIds><t:ItemId Id="` + xmlEscape(eventID) + `"/></m:ItemIds></m:GetItem>`

	var getEnv dto.EWSGetItemEnvelope
	if appErr := e.call(ctx, soapEnvelope(roomID, getBody), &getEnv); appErr != nil {
		return appErr
	}
	if appErr := ewsResponseError(getEnv.ResponseCode, getEnv.MessageText); appErr != nil {
		return appErr
	}

	updateBody := `<m:UpdateItem ConflictResolution="AlwaysOverwrite" SendMeetingInvitationsOrCancellations="SendToNone">` +
		`<m:ItemChanges><t:ItemChange>` +
		`<t:ItemId Id="` + xmlEscape(getEnv.ItemID.ID) + `" ChangeKey="` + xmlEscape(getEnv.ItemID.ChangeKey) + `"/>` +
		`<t:Updates><t:SetItemField>` +
		`<t:FieldURI FieldURI="calendar:End"/>` +
		`<t:CalendarItem><t:End>` + newEnd.UTC().Format(ewsTimeLayout) + `</t:End></t:CalendarItem>` +
		`</t:SetItemField></t:Updates>` +
		`</t:ItemChange></m:ItemChanges></m:UpdateItem>`

	var updEnv dto.EWSUpdateItemEnvelope
	if appErr := e.call(ctx, soapEnvelope(roomID, updateBody), &updEnv); appErr != nil {
		return appErr
	}
	if appErr := ewsResponseError(updEnv.ResponseCode, updEnv.MessageText); appErr != nil {
		return appErr
	}

	logger.Info("EWSService:PatchEventEnd:Patched", "room", roomID, "event_id", eventID, "new_end", newEnd.Format(time.RFC3339))
	return nil
}
