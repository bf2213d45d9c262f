package model

import "time"

// Discount is a voucher code. DiscountValue is either "<percent>%" or a
// fixed amount such as "10000". UsedCount never exceeds MaxUsage.
type Discount struct {
	ID            uint64    `json:"id"`
	Code          string    `json:"code"`
	Title         string    `json:"title"`
	DiscountValue string    `json:"discount_value"`
	UsedCount     int       `json:"used_count"`
	MaxUsage      int       `json:"max_usage"`
	CreatedAt     time.Time `json:"created_at"`
}

// Remaining returns how many redemptions are left, never negative.
func (d Discount) Remaining() int {
	if d.UsedCount >= d.MaxUsage {
		return 0
	}
	return d.MaxUsage - d.UsedCount
}
