package dto

// CreateReservationRequest books a room for one slot on one date. The date
// uses the "YYYY-MM-DD" wire format shared with the persisted rows.
type CreateReservationRequest struct {
	RoomID   string `json:"room_id" validate:"required"`
	SlotID   int    `json:"slot_id" validate:"required,gt=0"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Purpose  string `json:"purpose"`
	BookedBy string `json:"booked_by"`
}
