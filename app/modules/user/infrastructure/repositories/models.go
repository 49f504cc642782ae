package userdb

import (
	"time"

	userdomain "github.com/Black-And-White-Club/campscore/app/modules/user/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is a camp staff member who can evaluate or administer scores.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	UUID          uuid.UUID       `bun:"uuid,pk,type:uuid" json:"uuid"`
	Name          string          `bun:"name,notnull" json:"name"`
	Role          userdomain.Role `bun:"role,notnull" json:"role"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Actor converts the row into the domain identity.
func (u *User) Actor() *userdomain.Actor {
	return &userdomain.Actor{UUID: u.UUID, Name: u.Name, Role: u.Role}
}
