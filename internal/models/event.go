package models

import "time"

// RootEvent reports a change to an allowed root directory itself
type RootEvent struct {
	Root      string    `json:"root"`
	Type      string    `json:"type"` // "removed" or "renamed"
	Timestamp time.Time `json:"timestamp"`
}
