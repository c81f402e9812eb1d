package holds

import (
	"time"

	"github.com/tableserve/pos-backend/internal/cart"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
)

// HeldOrder is a frozen snapshot of an in-progress order parked for
// later. Holding never touches stock, the items are only reserved once
// the resumed order is sent to the kitchen.
type HeldOrder struct {
	ID         int         `json:"id"`
	Lines      []cart.Line `json:"lines"`
	TotalCents int         `json:"total_cents"`
	HeldAt     time.Time   `json:"held_at"`
}

// Queue keeps held orders in the sequence they were parked. IDs are
// assigned from a counter that starts at 1 and only moves forward, so a
// cancelled hold's ID is never handed out again.
type Queue struct {
	orders []HeldOrder
	nextID int
}

func NewQueue() *Queue {
	return &Queue{nextID: 1}
}

func (q *Queue) Len() int {
	return len(q.orders)
}

// Enqueue parks a snapshot and returns it with its assigned ID.
func (q *Queue) Enqueue(lines []cart.Line) (HeldOrder, error) {
	if len(lines) == 0 {
		return HeldOrder{}, pkgerrors.New(pkgerrors.CodeValidation, "cannot hold an empty order")
	}

	total := 0
	copied := make([]cart.Line, len(lines))
	for i, line := range lines {
		copied[i] = line
		total += line.ExtendedCents()
	}

	held := HeldOrder{
		ID:         q.nextID,
		Lines:      copied,
		TotalCents: total,
		HeldAt:     time.Now().UTC(),
	}
	q.nextID++
	q.orders = append(q.orders, held)
	return held, nil
}

// Get returns the held order without removing it.
func (q *Queue) Get(id int) (HeldOrder, error) {
	for _, held := range q.orders {
		if held.ID == id {
			return copyHeld(held), nil
		}
	}
	return HeldOrder{}, pkgerrors.New(pkgerrors.CodeNotFound, "held order not found").
		WithDetails(map[string]any{"hold_id": id})
}

// Take removes the held order from the queue and returns it. Both
// cancelling and resuming dequeue through here.
func (q *Queue) Take(id int) (HeldOrder, error) {
	for i, held := range q.orders {
		if held.ID == id {
			q.orders = append(q.orders[:i], q.orders[i+1:]...)
			return held, nil
		}
	}
	return HeldOrder{}, pkgerrors.New(pkgerrors.CodeNotFound, "held order not found").
		WithDetails(map[string]any{"hold_id": id})
}

// List returns the queue contents in hold order.
func (q *Queue) List() []HeldOrder {
	out := make([]HeldOrder, len(q.orders))
	for i, held := range q.orders {
		out[i] = copyHeld(held)
	}
	return out
}

func copyHeld(h HeldOrder) HeldOrder {
	h.Lines = append([]cart.Line(nil), h.Lines...)
	return h
}
