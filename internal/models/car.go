package models

import (
	"strings"
	"time"
)

// Car represents a car listing owned by a single user
type Car struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"` // Asset references, not URLs
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CarUpdate holds the replaceable fields of a car. Nil fields are left unchanged.
type CarUpdate struct {
	Title       *string
	Description *string
	Tags        []string // nil keeps the stored tags, an empty slice clears them
	Images      []string // nil keeps the stored images
	UpdatedAt   time.Time
}

// ParseTags splits a comma-separated tag list, trimming each entry and dropping empty ones
func ParseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
