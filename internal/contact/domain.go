package contact

import "time"

// Message is an inbound contact-form message.
type Message struct {
	ID        int64
	StoreID   *int64
	Name      string
	Email     string
	Phone     string
	Subject   string
	Body      string
	IsRead    bool
	CreatedAt time.Time
}
