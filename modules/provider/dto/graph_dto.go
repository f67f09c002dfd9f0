package dto

type GraphRoomList struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

type GraphRoomListsResponse struct {
	Value    []GraphRoomList `json:"value"`
	NextLink string          `json:"@odata.nextLink"`
}

type GraphRoom struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

type GraphRoomsResponse struct {
	Value    []GraphRoom `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

type GraphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type GraphEvent struct {
	ID          string        `json:"id"`
	Subject     string        `json:"subject"`
	Sensitivity string        `json:"sensitivity"`
	Organizer   GraphRecipient `json:"organizer"`
	Start       GraphDateTime `json:"start"`
	End         GraphDateTime `json:"end"`
}

type GraphRecipient struct {
	EmailAddress struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type GraphEventsResponse struct {
	Value    []GraphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

type GraphItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// GraphCreateEventRequest deliberately has no attendees, locations or
// resources fields; the room's own calendar is the only thing touched.
type GraphCreateEventRequest struct {
	Subject string        `json:"subject"`
	Body    GraphItemBody `json:"body"`
	Start   GraphDateTime `json:"start"`
	End     GraphDateTime `json:"end"`
}

type GraphPatchEndRequest struct {
	End GraphDateTime `json:"end"`
}

type GraphCreatedEvent struct {
	ID string `json:"id"`
}
