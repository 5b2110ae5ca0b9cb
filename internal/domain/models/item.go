package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Item is a named, countable pantry entry. Name is the store key and is kept
// exactly as typed.
type Item struct {
	Name     string `json:"name" bson:"_id"`
	Quantity int    `json:"quantity" bson:"quantity"`
}

// DisplayName upper-cases the first letter of the name for rendering only.
func (i Item) DisplayName() string {
	r, size := utf8.DecodeRuneInString(i.Name)
	if r == utf8.RuneError {
		return i.Name
	}
	return string(unicode.ToUpper(r)) + i.Name[size:]
}

// Snapshot is the full list of items as last fetched from the store, ordered
// by name.
type Snapshot []Item

// Filter returns the items whose name contains query, ignoring case. An empty
// query yields the whole snapshot. The receiver is never modified.
func (s Snapshot) Filter(query string) Snapshot {
	if query == "" {
		return s
	}

	needle := strings.ToLower(query)
	out := make(Snapshot, 0, len(s))
	for _, item := range s {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the item stored under name.
func (s Snapshot) Find(name string) (Item, bool) {
	for _, item := range s {
		if item.Name == name {
			return item, true
		}
	}
	return Item{}, false
}

// TotalUnits sums the quantities of every item.
func (s Snapshot) TotalUnits() int {
	total := 0
	for _, item := range s {
		total += item.Quantity
	}
	return total
}
