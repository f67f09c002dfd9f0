package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"roomdisplay/core/cache"
	"roomdisplay/core/config"
	"roomdisplay/core/constants"
	"roomdisplay/core/errors"
	"roomdisplay/core/logger"
	"roomdisplay/modules/provider/dto"
	"roomdisplay/modules/room/entity"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	msGraphBaseURL  = "https://graph.microsoft.com/v1.0"
	msLoginTokenURL = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	graphTimeLayout = "2006-01-02T15:04:05"
)

// GraphService talks to Microsoft Graph with application (client-credential)
// permissions. Access tokens are cached in redis until shortly before expiry,
// with an in-process copy so redis-less deployments still reuse tokens.
type GraphService struct {
	cfg    config.GraphConfig
	cache  cache.Cache
	client *http.Client
	base   string

	tokenMux    sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewGraphService(cfg config.GraphConfig, c cache.Cache) *GraphService {
	base := cfg.BaseURL
	if base == "" {
		base = msGraphBaseURL
	}
	return &GraphService{
		cfg:    cfg,
		cache:  c,
		client: &http.Client{Timeout: constants.DefaultTimeout},
		base:   strings.TrimRight(base, "/"),
	}
}

func (g *GraphService) accessToken(ctx context.Context) (string, *errors.AppError) {
	if token, err := g.cache.GetString(ctx, constants.GraphTokenCacheKey); err == nil && token != "" {
		return token, nil
	}

	g.tokenMux.Lock()
	defer g.tokenMux.Unlock()
	if g.token != "" && time.Now().Before(g.tokenExpiry) {
		return g.token, nil
	}

	tokenURL := g.cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf(msLoginTokenURL, g.cfg.TenantID)
	}
	cc := &clientcredentials.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}

	token, err := cc.Token(ctx)
	if err != nil {
		logger.Error("GraphService:accessToken:TokenRequestFailed", "error", err)
		return "", errors.NewAppError(errors.ErrProviderAuth, "failed to acquire Graph access token", err)
	}

	ttl := time.Until(token.Expiry) - time.Minute
	if ttl > 0 {
		g.token = token.AccessToken
		g.tokenExpiry = token.Expiry.Add(-time.Minute)
		if err := g.cache.SetString(ctx, constants.GraphTokenCacheKey, token.AccessToken, ttl); err != nil {
			logger.Warn("GraphService:accessToken:CacheWriteFailed", "error", err)
		}
	}
	return token.AccessToken, nil
}

func (g *GraphService) do(ctx context.Context, method, rawURL string, body any, dest any) *errors.AppError {
	token, appErr := g.accessToken(ctx)
	if appErr != nil {
		return appErr
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.NewAppError(errors.ErrInternalServer, "failed to encode request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Error("GraphService:do:TransportError", "method", method, "url", rawURL, "error", err)
		return errors.NewAppError(errors.ErrProviderUnavailable, "Microsoft Graph is unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		logger.Error("GraphService:do:APIError", "method", method, "url", rawURL, "status", resp.StatusCode, "body", string(respBody))
		return graphStatusError(resp.StatusCode)
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return errors.NewAppError(errors.ErrProviderUnavailable, "failed to parse Graph response", err)
		}
	}
	return nil
}

func graphStatusError(status int) *errors.AppError {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewAppError(errors.ErrProviderAuth, "Microsoft Graph rejected the credentials", nil)
	case http.StatusNotFound:
		return errors.NewAppError(errors.ErrNotFound, "resource not found on Microsoft Graph", nil)
	default:
		return errors.NewAppError(errors.ErrProviderUnavailable, fmt.Sprintf("Microsoft Graph error: %d", status), nil)
	}
}

func (g *GraphService) ListRoomLists(ctx context.Context) ([]entity.RoomList, *errors.AppError) {
	var out []entity.RoomList
	next := g.base + "/places/microsoft.graph.roomlist"
	for next != "" {
		var page dto.GraphRoomListsResponse
		if appErr := g.do(ctx, http.MethodGet, next, nil, &page); appErr != nil {
			return nil, appErr
		}
		for _, rl := range page.Value {
			out = append(out, entity.RoomList{
				ID:    rl.EmailAddress,
				Name:  rl.DisplayName,
				Email: rl.EmailAddress,
			})
		}
		next = page.NextLink
	}
	return out, nil
}

func (g *GraphService) ListRooms(ctx context.Context, roomListID string) ([]entity.Room, *errors.AppError) {
	var out []entity.Room
	next := g.base + "/places/" + url.PathEscape(roomListID) + "/microsoft.graph.roomlist/rooms?$top=" + fmt.Sprint(constants.GraphPageSize)
	for next != "" && len(out) < constants.MaxRoomsPerList {
		var page dto.GraphRoomsResponse
		if appErr := g.do(ctx, http.MethodGet, next, nil, &page); appErr != nil {
			return nil, appErr
		}
		for _, r := range page.Value {
			out = append(out, entity.Room{
				Name:     r.DisplayName,
				Email:    r.EmailAddress,
				RoomList: roomListID,
			})
		}
		next = page.NextLink
	}
	if len(out) > constants.MaxRoomsPerList {
		out = out[:constants.MaxRoomsPerList]
	}
	return out, nil
}

func (g *GraphService) GetBusyIntervals(ctx context.Context, roomID string, windowStart, windowEnd time.Time) ([]entity.Appointment, *errors.AppError) {
	params := url.Values{}
	params.Set("startDateTime", windowStart.UTC().Format(time.RFC3339))
	params.Set("endDateTime", windowEnd.UTC().Format(time.RFC3339))
	params.Set("$orderby", "start/dateTime")
	params.Set("$top", fmt.Sprint(constants.GraphPageSize))

	var out []entity.Appointment
	next := g.base + "/users/" + url.PathEscape(roomID) + "/calendarView?" + params.Encode()
	for next != "" && len(out) < constants.MaxAppointments {
		var page dto.GraphEventsResponse
		if appErr := g.do(ctx, http.MethodGet, next, nil, &page); appErr != nil {
			return nil, appErr
		}
		for _, ev := range page.Value {
			start, err := parseGraphTime(ev.Start)
			if err != nil {
				logger.Warn("GraphService:GetBusyIntervals:BadStart", "room", roomID, "value", ev.Start.DateTime, "error", err)
				continue
			}
			end, err := parseGraphTime(ev.End)
			if err != nil {
				logger.Warn("GraphService:GetBusyIntervals:BadEnd", "room", roomID, "value", ev.End.DateTime, "error", err)
				continue
			}
			out = append(out, entity.Appointment{
				ID:        ev.ID,
				Subject:   ev.Subject,
				Organizer: ev.Organizer.EmailAddress.Name,
				Start:     start,
				End:       end,
				Private:   strings.EqualFold(ev.Sensitivity, "private"),
			})
		}
		next = page.NextLink
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	if len(out) > constants.MaxAppointments {
		out = out[:constants.MaxAppointments]
	}
	return out, nil
}

func (g *GraphService) CreateEvent(ctx context.Context, roomID, subject string, start, end time.Time, description string) (string, *errors.AppError) {
	body := dto.GraphCreateEventRequest{
		Subject: subject,
		Body:    dto.GraphItemBody{ContentType: "text", Content: description},
		Start:   toGraphTime(start),
		End:     toGraphTime(end),
	}

	var created dto.GraphCreatedEvent
	endpoint := g.base + "/users/" + url.PathEscape(roomID) + "/calendar/events"
	if appErr := g.do(ctx, http.MethodPost, endpoint, body, &created); appErr != nil {
		return "", appErr
	}

	logger.Info("GraphService:CreateEvent:Created", "room", roomID, "event_id", created.ID)
	return created.ID, nil
}

func (g *GraphService) PatchEventEnd(ctx context.Context, roomID, eventID string, newEnd time.Time) *errors.AppError {
	body := dto.GraphPatchEndRequest{End: toGraphTime(newEnd)}
	endpoint := g.base + "/users/" + url.PathEscape(roomID) + "/events/" + url.PathEscape(eventID)
	if appErr := g.do(ctx, http.MethodPatch, endpoint, body, nil); appErr != nil {
		return appErr
	}
	logger.Info("GraphService:PatchEventEnd:Patched", "room", roomID, "event_id", eventID, "new_end", newEnd.Format(time.RFC3339))
	return nil
}

// parseGraphTime handles Graph's fractional-second local format. The Prefer
// header pins responses to UTC, so a missing zone means UTC.
func parseGraphTime(gt dto.GraphDateTime) (time.Time, error) {
	raw := gt.DateTime
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		raw = raw[:idx]
	}
	loc := time.UTC
	if gt.TimeZone != "" && !strings.EqualFold(gt.TimeZone, "UTC") {
		if l, err := time.LoadLocation(gt.TimeZone); err == nil {
			loc = l
		}
	}
	return time.ParseInLocation(graphTimeLayout, raw, loc)
}

func toGraphTime(t time.Time) dto.GraphDateTime {
	return dto.GraphDateTime{
		DateTime: t.UTC().Format(graphTimeLayout),
		TimeZone: "UTC",
	}
}
