package dto

// Display configuration documents. Persistence of these to disk belongs to
// the admin file layer; this process holds the current copy and broadcasts
// changes to connected displays.

type WiFiSettings struct {
	Enabled  bool   `json:"enabled"`
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

type LogoSettings struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

type SidebarItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon,omitempty"`
}

type SidebarSettings struct {
	Enabled bool          `json:"enabled"`
	Items   []SidebarItem `json:"items"`
}

type BookingSettings struct {
	Enabled            bool   `json:"enabled"`
	AllowCustomMinutes bool   `json:"allowCustomMinutes"`
	DisabledReason     string `json:"disabledReason,omitempty"`
}

type ColorSettings struct {
	Primary    string `json:"primary"`
	Background string `json:"background"`
	Busy       string `json:"busy"`
	Free       string `json:"free"`
}

type Settings struct {
	WiFi    WiFiSettings    `json:"wifi"`
	Logo    LogoSettings    `json:"logo"`
	Sidebar SidebarSettings `json:"sidebar"`
	Booking BookingSettings `json:"booking"`
	Colors  ColorSettings   `json:"colors"`
}
