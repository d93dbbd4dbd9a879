package models

// SlotsPerWeek is the size of the portal's occupancy grid: 7 days of 7 periods.
const (
	DaysPerWeek    = 7
	PeriodsPerDay  = 7
	SlotsPerWeek   = DaysPerWeek * PeriodsPerDay
	MaxFreeDisplay = 14 // free-period count that fills a card's bar
)

// QueryResult is the answer to one availability query.
type QueryResult struct {
	Week      int                    `json:"week"`
	Buildings []BuildingAvailability `json:"buildings"`
}

// BuildingAvailability pairs a teaching building with its recommended room.
type BuildingAvailability struct {
	Building string   `json:"building"`
	BestRoom RoomSlot `json:"best_room"`
}

// RoomSlot describes a room's longest continuous free interval for the week.
type RoomSlot struct {
	Room      string `json:"room"`
	MaxFree   int    `json:"max_free"`
	TimeRange string `json:"time_range"`
	Slots     []bool `json:"slots,omitempty"` // true = free, SlotsPerWeek entries
}

// QueryRequest is the body of POST /api/query. A nil Week means the
// portal's current week.
type QueryRequest struct {
	Week *int `json:"week,omitempty"`
}
