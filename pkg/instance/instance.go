package instance

import "github.com/tableserve/pos-backend/pkg/env"

// GetID returns the register terminal identifier or a default value.
func GetID() string {
	return env.Get("TABLESERVE_TERMINAL_ID", "register-1")
}
