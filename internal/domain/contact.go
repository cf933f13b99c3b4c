package domain

import (
	"strings"
	"time"
)

// Contact is a customer record tickets are raised for.
type Contact struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins the name parts, skipping blanks.
func (c Contact) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}
