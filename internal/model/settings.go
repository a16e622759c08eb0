package model

import (
	"encoding/json"
	"time"
)

// DayHours describes a single weekday's operating window. When Closed is
// true the open/close values are ignored and no bookings are accepted
// for that weekday. Open and Close are HH:mm strings; empty values fall
// back to the 09:00–22:00 defaults at the point of use.
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// OperatingHours holds one DayHours per weekday. Using a fixed struct
// instead of a free-form map removes missing-key ambiguity: every
// weekday always resolves to a concrete entry.
type OperatingHours struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// For returns the entry for the given weekday.
func (oh OperatingHours) For(d time.Weekday) DayHours {
	switch d {
	case time.Monday:
		return oh.Monday
	case time.Tuesday:
		return oh.Tuesday
	case time.Wednesday:
		return oh.Wednesday
	case time.Thursday:
		return oh.Thursday
	case time.Friday:
		return oh.Friday
	case time.Saturday:
		return oh.Saturday
	default:
		return oh.Sunday
	}
}

// Scan-friendly encode/decode: operating hours persist as a JSON column.
func (oh OperatingHours) MarshalBinary() ([]byte, error)  { return json.Marshal(oh) }
func (oh *OperatingHours) UnmarshalBinary(b []byte) error { return json.Unmarshal(b, oh) }

// ReservationSettings is the per-tenant configuration snapshot read by
// every other part of the engine. One row per tenant, created lazily
// with defaults on first access and updated in place. No business-rule
// validation happens here; the booking service interprets the values at
// the point of use (a closed day blocks new bookings but does not
// cancel existing ones).
//
// Fields:
//  TenantID                – owning restaurant.
//  IsEnabled               – master switch for the whole subsystem.
//  RequireApproval         – new bookings start PENDING when true.
//  TimeSlotInterval        – slot spacing in minutes, > 0.
//  MinAdvanceBooking       – minimum lead time in minutes.
//  MaxAdvanceDays          – furthest bookable day, >= 0.
//  DefaultDuration         – assumed booking length in minutes, > 0.
//  OperatingHours          – weekday open/close windows.
//  MaxGuestsPerReservation – party size ceiling.
//  MaxReservationsPerSlot  – optional per-slot booking cap.
//  AllowCancellation       – whether customers may cancel.
//  CancellationDeadline    – minimum lead time in minutes for a
//                            customer cancellation.
//  BannerTitle/BannerDescription/CustomMessage – display-only text for
//                            the public booking page.
type ReservationSettings struct {
	TenantID                uint64         `json:"tenant_id"`                          // reservation_settings.tenant_id
	IsEnabled               bool           `json:"is_enabled"`                         // reservation_settings.is_enabled
	RequireApproval         bool           `json:"require_approval"`                   // reservation_settings.require_approval
	TimeSlotInterval        int            `json:"time_slot_interval"`                 // reservation_settings.time_slot_interval
	MinAdvanceBooking       int            `json:"min_advance_booking"`                // reservation_settings.min_advance_booking
	MaxAdvanceDays          int            `json:"max_advance_days"`                   // reservation_settings.max_advance_days
	DefaultDuration         int            `json:"default_duration"`                   // reservation_settings.default_duration
	OperatingHours          OperatingHours `json:"operating_hours"`                    // reservation_settings.operating_hours (JSON)
	MaxGuestsPerReservation int            `json:"max_guests_per_reservation"`         // reservation_settings.max_guests_per_reservation
	MaxReservationsPerSlot  *int           `json:"max_reservations_per_slot,omitempty"` // reservation_settings.max_reservations_per_slot (nullable)
	AllowCancellation       bool           `json:"allow_cancellation"`                 // reservation_settings.allow_cancellation
	CancellationDeadline    int            `json:"cancellation_deadline"`              // reservation_settings.cancellation_deadline
	BannerTitle             *string        `json:"banner_title,omitempty"`             // reservation_settings.banner_title (nullable)
	BannerDescription       *string        `json:"banner_description,omitempty"`       // reservation_settings.banner_description (nullable)
	CustomMessage           *string        `json:"custom_message,omitempty"`           // reservation_settings.custom_message (nullable)
	UpdatedAt               time.Time      `json:"updated_at"`                         // reservation_settings.updated_at
}

// DefaultReservationSettings returns the row inserted on first access
// for a tenant that has never configured reservations.
func DefaultReservationSettings(tenantID uint64) ReservationSettings {
	allDay := DayHours{Open: "09:00", Close: "22:00"}
	return ReservationSettings{
		TenantID:                tenantID,
		IsEnabled:               true,
		RequireApproval:         true,
		TimeSlotInterval:        30,
		MinAdvanceBooking:       60,
		MaxAdvanceDays:          30,
		DefaultDuration:         90,
		MaxGuestsPerReservation: 20,
		AllowCancellation:       true,
		CancellationDeadline:    120,
		OperatingHours: OperatingHours{
			Monday:    allDay,
			Tuesday:   allDay,
			Wednesday: allDay,
			Thursday:  allDay,
			Friday:    allDay,
			Saturday:  allDay,
			Sunday:    allDay,
		},
	}
}

// PublicSettings is the sanitized subset exposed to the public booking
// page. Internal policy fields such as RequireApproval and
// MaxReservationsPerSlot are never exposed.
type PublicSettings struct {
	IsEnabled               bool           `json:"is_enabled"`
	TimeSlotInterval        int            `json:"time_slot_interval"`
	MinAdvanceBooking       int            `json:"min_advance_booking"`
	MaxAdvanceDays          int            `json:"max_advance_days"`
	DefaultDuration         int            `json:"default_duration"`
	OperatingHours          OperatingHours `json:"operating_hours"`
	MaxGuestsPerReservation int            `json:"max_guests_per_reservation"`
	AllowCancellation       bool           `json:"allow_cancellation"`
	CancellationDeadline    int            `json:"cancellation_deadline"`
	BannerTitle             *string        `json:"banner_title,omitempty"`
	BannerDescription       *string        `json:"banner_description,omitempty"`
	CustomMessage           *string        `json:"custom_message,omitempty"`
}

// Public projects the settings into their public view.
func (s ReservationSettings) Public() PublicSettings {
	return PublicSettings{
		IsEnabled:               s.IsEnabled,
		TimeSlotInterval:        s.TimeSlotInterval,
		MinAdvanceBooking:       s.MinAdvanceBooking,
		MaxAdvanceDays:          s.MaxAdvanceDays,
		DefaultDuration:         s.DefaultDuration,
		OperatingHours:          s.OperatingHours,
		MaxGuestsPerReservation: s.MaxGuestsPerReservation,
		AllowCancellation:       s.AllowCancellation,
		CancellationDeadline:    s.CancellationDeadline,
		BannerTitle:             s.BannerTitle,
		BannerDescription:       s.BannerDescription,
		CustomMessage:           s.CustomMessage,
	}
}
