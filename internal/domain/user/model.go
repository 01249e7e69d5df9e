package user

import "time"

type User struct {
	ID             string
	Email          string
	Username       string
	HashedPassword string
	Level          int
	XP             int
	XPToNextLevel  int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Identity is the public view of a user returned by the identity endpoint and
// shown by the client.
type Identity struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Level         int       `json:"level"`
	XP            int       `json:"xp"`
	XPToNextLevel int       `json:"xp_to_next_level"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) Identity() Identity {
	return Identity{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Level:         u.Level,
		XP:            u.XP,
		XPToNextLevel: u.XPToNextLevel,
		CreatedAt:     u.CreatedAt,
	}
}

// GuestIdentity is the fixed local-only identity used when the guest flag is
// set. It never reaches the network.
var GuestIdentity = Identity{
	ID:            "guest",
	Username:      "Invité",
	Email:         "mode@invite",
	Level:         1,
	XP:            0,
	XPToNextLevel: 100,
}
