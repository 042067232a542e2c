package model

import (
	"time"
)

// User is the minimal owner record goals hang off. Sign-up, sessions
// and profile data live in the external identity service; this row
// only anchors ownership and the foreign keys.
type User struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
