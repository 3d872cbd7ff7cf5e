package session

// Action is a quantity stepper action coming from an inline keyboard.
type Action string

const (
	// ActionIncrease adds one unit; it always succeeds.
	ActionIncrease Action = "increase"
	// ActionDecrease removes one unit; at zero it is a no-op, not an error.
	ActionDecrease Action = "decrease"
)

// Apply returns the quantity after applying the action. The result is never
// negative: max(0, quantity-1) for decrease, quantity+1 for increase, and the
// input unchanged for anything else.
func Apply(action Action, quantity int) int {
	if quantity < 0 {
		quantity = 0
	}
	switch action {
	case ActionIncrease:
		return quantity + 1
	case ActionDecrease:
		if quantity > 0 {
			return quantity - 1
		}
	}
	return quantity
}
