package models

import "time"

// RedemptionMetadata is what the gate knows about the redeeming client.
type RedemptionMetadata struct {
	IP        string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

// RedemptionRecord marks a code as permanently used.
type RedemptionRecord struct {
	Code         string    `json:"code" redis:"code"`
	RedeemedAtIP string    `json:"ip_address" redis:"ip_address"`
	UserAgent    string    `json:"user_agent" redis:"user_agent"`
	Timestamp    time.Time `json:"created_at" redis:"created_at"`
}
