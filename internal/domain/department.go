package domain

import "time"

// CreatorSnapshot records which admin created a department.
type CreatorSnapshot struct {
	UserID string
	Name   string
}

// Department is an organizational unit staffed by exactly one
// Department-role account. Name and slug are immutable after creation.
type Department struct {
	ID                string
	Name              string
	Slug              string
	CreatedBy         CreatorSnapshot
	AssignedAccountID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
