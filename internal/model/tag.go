package model

import (
	"sort"
	"time"
)

// Tag is a category messages can be filed under. Order is the display key.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SortTags sorts in place by Order. Equal orders keep their stored sequence.
func SortTags(tags []Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Order < tags[j].Order
	})
}
