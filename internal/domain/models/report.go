package models

import "time"

// InventoryReport is a point-in-time copy of the pantry stored in MongoDB.
type InventoryReport struct {
	TakenAt    time.Time `bson:"taken_at" json:"taken_at"`
	ItemCount  int       `bson:"item_count" json:"item_count"`
	TotalUnits int       `bson:"total_units" json:"total_units"`
	Items      []Item    `bson:"items" json:"items"`
}

// NewInventoryReport derives a report from a snapshot.
func NewInventoryReport(snapshot Snapshot, takenAt time.Time) InventoryReport {
	items := make([]Item, len(snapshot))
	copy(items, snapshot)

	return InventoryReport{
		TakenAt:    takenAt,
		ItemCount:  len(items),
		TotalUnits: snapshot.TotalUnits(),
		Items:      items,
	}
}
