package domain

import (
	"time"

	"github.com/google/uuid"
)

// PurchasePattern records one completed order for co-purchase mining.
// Written once at order time, read-only afterward.
type PurchasePattern struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	OrderID string    `json:"order_id"`

	Products   []PatternProduct `json:"products"`
	OrderValue float64          `json:"order_value"`
	OrderDate  time.Time        `json:"order_date"`

	// Derived at write time from OrderDate
	Season    Season `json:"season"`
	Festival  string `json:"festival,omitempty"`
	DayOfWeek string `json:"day_of_week"`
	TimeOfDay string `json:"time_of_day"`
}

type PatternProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	Brand     string    `json:"brand,omitempty"`
}

// NewPurchasePattern derives the calendar context fields from the order date.
func NewPurchasePattern(userID uuid.UUID, orderID string, products []PatternProduct, orderDate time.Time) *PurchasePattern {
	var total float64
	for _, p := range products {
		total += p.Price * float64(p.Quantity)
	}
	return &PurchasePattern{
		ID:         uuid.New(),
		UserID:     userID,
		OrderID:    orderID,
		Products:   products,
		OrderValue: total,
		OrderDate:  orderDate,
		Season:     SeasonForMonth(orderDate.Month()),
		Festival:   FestivalForDate(orderDate),
		DayOfWeek:  orderDate.Weekday().String(),
		TimeOfDay:  TimeOfDay(orderDate),
	}
}
