package dto

import "encoding/xml"

// Response shapes for the EWS SOAP operations. Field selectors use local
// names only; encoding/xml matches them across the soap/types namespaces.

type EWSAddress struct {
	Name         string `xml:"Name"`
	EmailAddress string `xml:"EmailAddress"`
}

type EWSGetRoomListsEnvelope struct {
	XMLName      xml.Name     `xml:"Envelope"`
	ResponseCode string       `xml:"Body>GetRoomListsResponse>ResponseCode"`
	MessageText  string       `xml:"Body>GetRoomListsResponse>MessageText"`
	RoomLists    []EWSAddress `xml:"Body>GetRoomListsResponse>RoomLists>Address"`
}

type EWSGetRoomsEnvelope struct {
	XMLName      xml.Name     `xml:"Envelope"`
	ResponseCode string       `xml:"Body>GetRoomsResponse>ResponseCode"`
	MessageText  string       `xml:"Body>GetRoomsResponse>MessageText"`
	Rooms        []EWSAddress `xml:"Body>GetRoomsResponse>Rooms>Room>Id"`
}

type EWSItemID struct {
	ID        string `xml:"Id,attr"`
	ChangeKey string `xml:"ChangeKey,attr"`
}

type EWSCalendarItem struct {
	ItemID      EWSItemID `xml:"ItemId"`
	Subject     string    `xml:"Subject"`
	Sensitivity string    `xml:"Sensitivity"`
	Start       string    `xml:"Start"`
	End         string    `xml:"End"`
	Organizer   string    `xml:"Organizer>Mailbox>Name"`
}

type EWSFindItemEnvelope struct {
	XMLName      xml.Name          `xml:"Envelope"`
	ResponseCode string            `xml:"Body>FindItemResponse>ResponseMessages>FindItemResponseMessage>ResponseCode"`
	MessageText  string            `xml:"Body>FindItemResponse>ResponseMessages>FindItemResponseMessage>MessageText"`
	Items        []EWSCalendarItem `xml:"Body>FindItemResponse>ResponseMessages>FindItemResponseMessage>RootFolder>Items>CalendarItem"`
}

type EWSCreateItemEnvelope struct {
	XMLName      xml.Name  `xml:"Envelope"`
	ResponseCode string    `xml:"Body>CreateItemResponse>ResponseMessages>CreateItemResponseMessage>ResponseCode"`
	MessageText  string    `xml:"Body>CreateItemResponse>ResponseMessages>CreateItemResponseMessage>MessageText"`
	ItemID       EWSItemID `xml:"Body>CreateItemResponse>ResponseMessages>CreateItemResponseMessage>Items>CalendarItem>ItemId"`
}

type EWSGetItemEnvelope struct {
	XMLName      xml.Name  `xml:"Envelope"`
	ResponseCode string    `xml:"Body>GetItemResponse>ResponseMessages>GetItemResponseMessage>ResponseCode"`
	MessageText  string    `xml:"Body>GetItemResponse>ResponseMessages>GetItemResponseMessage>MessageText"`
	ItemID       EWSItemID `xml:"Body>GetItemResponse>ResponseMessages>GetItemResponseMessage>Items>CalendarItem>ItemId"`
}

type EWSUpdateItemEnvelope struct {
	XMLName      xml.Name `xml:"Envelope"`
	ResponseCode string   `xml:"Body>UpdateItemResponse>ResponseMessages>UpdateItemResponseMessage>ResponseCode"`
	MessageText  string   `xml:"Body>UpdateItemResponse>ResponseMessages>UpdateItemResponseMessage>MessageText"`
}
