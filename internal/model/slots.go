// Package model defines data structures for the booking conversation engine.
package model

// SlotName identifies one field of booking intent.
type SlotName string

const (
	SlotActivity  SlotName = "activity"
	SlotDate      SlotName = "date"
	SlotTime      SlotName = "time"
	SlotPartySize SlotName = "party_size"
	SlotEmail     SlotName = "email"
)

// SlotOrder is the canonical booking sequence. The prompt composer and the
// fallback responder both walk slots in this order so the dialogue asks the
// same questions whether or not the model is reachable.
var SlotOrder = []SlotName{SlotActivity, SlotDate, SlotTime, SlotPartySize, SlotEmail}

// BookingSlots is the sparse record of booking intent accumulated across a
// session. Date is an ISO calendar date (YYYY-MM-DD, no time component).
// Empty string / zero means unfilled.
type BookingSlots struct {
	ActivityID    string `json:"activity_id,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	PartySize     int    `json:"party_size,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

// Has reports whether the named slot is filled.
func (s BookingSlots) Has(name SlotName) bool {
	switch name {
	case SlotActivity:
		return s.ActivityID != ""
	case SlotDate:
		return s.Date != ""
	case SlotTime:
		return s.Time != ""
	case SlotPartySize:
		return s.PartySize > 0
	case SlotEmail:
		return s.CustomerEmail != ""
	}
	return false
}

// Complete reports whether every slot is filled.
func (s BookingSlots) Complete() bool {
	for _, name := range SlotOrder {
		if !s.Has(name) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no slot is filled.
func (s BookingSlots) IsEmpty() bool {
	return s == BookingSlots{}
}

// FirstMissing returns the earliest unfilled slot in the canonical order,
// and false if every slot is filled.
func (s BookingSlots) FirstMissing() (SlotName, bool) {
	for _, name := range SlotOrder {
		if !s.Has(name) {
			return name, true
		}
	}
	return "", false
}
