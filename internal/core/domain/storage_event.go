package domain

import "time"

// StorageEvent announces that a storage key changed in some tab.
type StorageEvent struct {
	Key      string    `json:"key"`
	NewValue string    `json:"new_value"`
	Removed  bool      `json:"removed"`
	Origin   string    `json:"origin"`
	At       time.Time `json:"at"`
}
