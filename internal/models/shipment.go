package models

import (
	"strings"
	"time"
)

// Владеющие системы. Фиксированный набор из трёх значений.
const (
	SystemGround = "GROUND"
	SystemAir    = "AIR"
	SystemSea    = "SEA"
)

// Конвенциональные статусы (набор открытый, можно расширять).
const (
	StatusPending   = "pending"
	StatusInTransit = "in-transit"
	StatusDelivered = "delivered"
)

func KnownSystems() []string {
	return []string{SystemGround, SystemAir, SystemSea}
}

// NormalizeSystem приводит тег системы к каноническому виду (верхний регистр)
// и сообщает, входит ли он в известный набор.
func NormalizeSystem(s string) (string, bool) {
	up := strings.ToUpper(strings.TrimSpace(s))
	switch up {
	case SystemGround, SystemAir, SystemSea:
		return up, true
	}
	return up, false
}

type ShipmentRecord struct {
	ID          uint64    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Status      string    `json:"status"`
	System      string    `json:"system"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

type ShipmentInput struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Status      string `json:"status"`
	System      string `json:"system"`
}
