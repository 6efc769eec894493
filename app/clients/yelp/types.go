package yelp

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

type Location struct {
	Address1       string   `json:"address1"`
	Address2       string   `json:"address2"`
	Address3       string   `json:"address3"`
	City           string   `json:"city"`
	ZipCode        string   `json:"zip_code"`
	State          string   `json:"state"`
	Country        string   `json:"country"`
	DisplayAddress []string `json:"display_address"`
}

// Business is one search result.
type Business struct {
	ID           string      `json:"id"`
	Alias        string      `json:"alias"`
	Name         string      `json:"name"`
	ImageURL     string      `json:"image_url"`
	IsClosed     bool        `json:"is_closed"`
	URL          string      `json:"url"`
	ReviewCount  int         `json:"review_count"`
	Categories   []Category  `json:"categories"`
	Rating       float64     `json:"rating"`
	Coordinates  Coordinates `json:"coordinates"`
	Transactions []string    `json:"transactions"`
	Price        string      `json:"price,omitempty"`
	Location     Location    `json:"location"`
	Phone        string      `json:"phone"`
	DisplayPhone string      `json:"display_phone"`
	Distance     float64     `json:"distance,omitempty"`
}

type Region struct {
	Center Coordinates `json:"center"`
}

type SearchResponse struct {
	Businesses []Business `json:"businesses"`
	Total      int        `json:"total"`
	Region     Region     `json:"region"`
}

type OpenSlot struct {
	IsOvernight bool   `json:"is_overnight"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Day         int    `json:"day"`
}

type Hours struct {
	Open      []OpenSlot `json:"open"`
	HoursType string     `json:"hours_type"`
	IsOpenNow bool       `json:"is_open_now"`
}

// BusinessDetail is the response of the business-by-id endpoint.
type BusinessDetail struct {
	Business
	IsClaimed bool     `json:"is_claimed"`
	Photos    []string `json:"photos"`
	Hours     []Hours  `json:"hours"`
}

type Term struct {
	Text string `json:"text"`
}

type AutocompleteBusiness struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AutocompleteResponse struct {
	Terms      []Term                 `json:"terms"`
	Businesses []AutocompleteBusiness `json:"businesses"`
	Categories []Category             `json:"categories"`
}

// EmptyAutocomplete has empty, non-nil lists so it encodes as [] not null.
func EmptyAutocomplete() *AutocompleteResponse {
	return &AutocompleteResponse{
		Terms:      []Term{},
		Businesses: []AutocompleteBusiness{},
		Categories: []Category{},
	}
}
