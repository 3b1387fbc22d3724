package model

// Dormitory buildings on campus.  Stored verbatim in rooms.building.
const (
	BuildingRG1 = "R+G1"
	BuildingRF2 = "R+F2"
	BuildingRG3 = "R+G3"
	BuildingRF4 = "R+F4"
	BuildingRM1 = "R+M1"
	BuildingRGZ = "R+GZ"
)

// ValidBuilding reports whether b is a known building code.
func ValidBuilding(b string) bool {
	switch b {
	case BuildingRG1, BuildingRF2, BuildingRG3, BuildingRF4, BuildingRM1, BuildingRGZ:
		return true
	}
	return false
}

// Room status values.  AVAILABLE is the only state a reservation may be
// created against; the reservation engine flips AVAILABLE to OCCUPIED
// with a conditional update so two concurrent bookings cannot both win.
const (
	RoomAvailable     = "AVAILABLE"
	RoomOccupied      = "OCCUPIED"
	RoomSoonAvailable = "SOON_AVAILABLE"
	RoomOutOfService  = "OUT_OF_SERVICE"
)

// ValidRoomStatus reports whether s is a known room status.
func ValidRoomStatus(s string) bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomSoonAvailable, RoomOutOfService:
		return true
	}
	return false
}

// Room represents a row in the `rooms` table.  Prices are stored in
// cents to avoid floating point accumulation; two fractional digits by
// construction.  Rooms are administrator-owned but their status is also
// mutated by the reservation engine when a reservation is created or
// cancelled.
//
// Fields:
//  ID          – primary key identifier.
//  Building    – one of the Building* codes.
//  Floor       – floor label within the building.
//  Description – free-text description of the room.
//  PriceCents  – monthly price in cents.
//  Status      – one of the Room* status values.
type Room struct {
	ID          uint64 // rooms.id
	Building    string // rooms.building
	Floor       string // rooms.floor
	Description string // rooms.description
	PriceCents  uint64 // rooms.price_cents
	Status      string // rooms.status
}
