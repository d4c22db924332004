package response

import "time"

type SummaryResponse struct {
	TotalEvents     int64   `json:"totalEvents"`
	TicketsSold     int64   `json:"ticketsSold"`
	Revenue         float64 `json:"revenue"`
	UniqueAttendees int64   `json:"uniqueAttendees"`
}

type DemographicsResponse struct {
	AgeBuckets  map[string]int `json:"ageBuckets"`
	ByGender    map[string]int `json:"byGender"`
	ByLocation  map[string]int `json:"byLocation"`
	ByInterests map[string]int `json:"byInterests"`
}

type AnalyticsEvent struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Venue string    `json:"venue"`
}

type EventAnalyticsResponse struct {
	Event        AnalyticsEvent       `json:"event"`
	TicketsSold  int64                `json:"ticketsSold"`
	Revenue      float64              `json:"revenue"`
	CheckedIns   int64                `json:"checkedIns"`
	Demographics DemographicsResponse `json:"demographics"`
}

type TrendPoint struct {
	Week    string  `json:"week"`
	Revenue float64 `json:"revenue"`
}
