package entities

import (
	"encoding/json"
	"strings"
	"time"
)

// TimestampLayout is the wire format for every timestamp the locker emits
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a time.Time that marshals in TimestampLayout (local time)
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds so it survives a JSON round trip
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Local().Format(TimestampLayout))
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Group is a named collection of files backed by one directory
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt Timestamp `json:"created_at"`
	Folder    string    `json:"folder"`
}

// GroupDocument is the persisted shape of the group registry
type GroupDocument struct {
	Groups []Group `json:"groups"`
}

// ValidateGroupName trims name and checks that it can be used both as a
// directory name directly under the upload root and as a filename prefix.
func ValidateGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyGroupName
	}
	if strings.HasPrefix(name, ".") || strings.ContainsAny(name, "/\\\x00") {
		return "", ErrInvalidGroupName
	}
	return name, nil
}
