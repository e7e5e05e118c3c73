package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the wire format for dates: ISO 8601 without a zone designator.
const DateLayout = "2006-01-02T15:04:05"

// Date is a calendar date (with optional time of day) stored as a SQLite datetime.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date { return Date{Time: t} }

// MarshalJSON writes the UTC wall clock, so offsets never leak into a zoneless value.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.UTC().Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date: expected string, got %s", s)
	}
	t, err := time.Parse(DateLayout, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	d.Time = t
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(v any) error {
	switch t := v.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		d.Time = t
	case string:
		return d.scanText(t)
	case []byte:
		return d.scanText(string(t))
	default:
		return fmt.Errorf("date: cannot scan %T", v)
	}
	return nil
}

// sqlite layouts written by mattn/go-sqlite3, newest first.
var storedLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (d *Date) scanText(s string) error {
	for _, layout := range storedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("date: unrecognised stored value %q", s)
}

func (Date) GormDataType() string { return "datetime" }
