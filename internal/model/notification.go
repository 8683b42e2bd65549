package model

import "time"

// Notification is the persisted, rendered form of one on-chain event.
type Notification struct {
	ID        int64     `json:"id"`
	DappID    string    `json:"dapp_id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Seen      bool      `json:"seen"`
	Time      time.Time `json:"time"`
	EventKey  string    `json:"event_key"`
	CreatedAt time.Time `json:"created_at"`
}
