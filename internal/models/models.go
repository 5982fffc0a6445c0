package models

import "time"

const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

// ValidRole reports whether role is one of the two roles the system knows.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}

const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the attendance session for a single calendar date. At most one
// exists per date; its token is what the QR code encodes.
type Session struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	QRCodeToken string `json:"qrCodeToken"`
}

// AttendanceLog is a stored check-in: one row per (user, date).
type AttendanceLog struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

// AttendanceRecord is the reporting view of one employee for one date.
// ABSENT is derived for employees with no log, never written to storage.
type AttendanceRecord struct {
	UserID      int64   `json:"userId"`
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	Date        string  `json:"date"`
	CheckInTime *string `json:"checkInTime"`
	Status      string  `json:"status"`
}

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// TimeFormat is the wire format for check-in times.
const TimeFormat = "15:04:05"

// Today returns the current calendar date in wire format.
func Today() string {
	return time.Now().Format(DateFormat)
}
