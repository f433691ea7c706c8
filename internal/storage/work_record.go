package storage

import "time"

// WorkRecord is one worked time span, read-only for this service. Worker and
// machine names come denormalized from the record store.
type WorkRecord struct {
	ID          int64     `json:"id"`
	WorkOrderID int64     `json:"work_order_id"`
	WorkerName  string    `json:"worker_name"`
	MachineName string    `json:"machine_name"`
	Description string    `json:"description"`
	Remarks     *string   `json:"remarks"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
}

// Hours returns the span length in decimal hours, never negative.
func (r WorkRecord) Hours() float64 {
	h := r.EndedAt.Sub(r.StartedAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}
