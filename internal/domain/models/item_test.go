package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotFilter(t *testing.T) {
	snapshot := Snapshot{{Name: "apple", Quantity: 2}, {Name: "banana", Quantity: 1}}

	assert.Equal(t, Snapshot{{Name: "banana", Quantity: 1}}, snapshot.Filter("an"))
	assert.Equal(t, snapshot, snapshot.Filter(""))
	assert.Equal(t, Snapshot{{Name: "apple", Quantity: 2}}, snapshot.Filter("APP"))
	assert.Empty(t, snapshot.Filter("cherry"))
	assert.Len(t, snapshot, 2, "filter must not modify the snapshot")
}

func TestSnapshotFilter_MixedCaseNames(t *testing.T) {
	snapshot := Snapshot{{Name: "Olive Oil", Quantity: 1}, {Name: "rice", Quantity: 3}}
	assert.Equal(t, Snapshot{{Name: "Olive Oil", Quantity: 1}}, snapshot.Filter("oil"))
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"eggs":      "Eggs",
		"Eggs":      "Eggs",
		"olive oil": "Olive oil",
		"élan":      "Élan",
		"":          "",
		"7up":       "7up",
	}
	for in, want := range cases {
		assert.Equal(t, want, Item{Name: in}.DisplayName(), in)
	}
}

func TestSnapshotFindAndTotal(t *testing.T) {
	snapshot := Snapshot{{Name: "eggs", Quantity: 12}, {Name: "milk", Quantity: 2}}

	item, ok := snapshot.Find("milk")
	assert.True(t, ok)
	assert.Equal(t, 2, item.Quantity)

	_, ok = snapshot.Find("Milk")
	assert.False(t, ok, "lookup is case sensitive like the store key")

	assert.Equal(t, 14, snapshot.TotalUnits())
}

func TestNewInventoryReport(t *testing.T) {
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)
	snapshot := Snapshot{{Name: "eggs", Quantity: 12}, {Name: "milk", Quantity: 2}}

	report := NewInventoryReport(snapshot, now)
	assert.Equal(t, now, report.TakenAt)
	assert.Equal(t, 2, report.ItemCount)
	assert.Equal(t, 14, report.TotalUnits)

	snapshot[0].Quantity = 99
	assert.Equal(t, 12, report.Items[0].Quantity, "report owns its copy")
}
