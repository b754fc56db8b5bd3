package repository

import "time"

// ProductListFilter narrows catalog queries.
type ProductListFilter struct {
	Page       int
	PageSize   int
	Category   string
	Search     string
	OnlyActive bool
	SortBy     string // price_asc / price_desc / name_asc / name_desc
}

// OrderListFilter narrows order queries.
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter narrows member queries.
type UserListFilter struct {
	Page             int
	PageSize         int
	Keyword          string
	MembershipStatus string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
}

// AppointmentListFilter narrows appointment queries.
type AppointmentListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Date     string
	Status   string
}
