package activitydb

import (
	"time"

	activitydomain "github.com/Black-And-White-Club/campscore/app/modules/activity/domain"
	userdomain "github.com/Black-And-White-Club/campscore/app/modules/user/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivityLog is one append-only audit entry.
type ActivityLog struct {
	bun.BaseModel `bun:"table:activity_logs,alias:al"`

	ID          int64                       `bun:"id,pk,autoincrement" json:"id"`
	CreatedAt   time.Time                   `bun:"created_at,notnull" json:"createdAt"`
	UserUUID    uuid.UUID                   `bun:"user_uuid,type:uuid,notnull" json:"userId"`
	UserName    string                      `bun:"user_name,notnull" json:"userName"`
	UserRole    userdomain.Role             `bun:"user_role,notnull" json:"userRole"`
	Action      activitydomain.Action       `bun:"action,notnull" json:"action"`
	Details     string                      `bun:"details,notnull" json:"details"`
	ClubUUID    *uuid.UUID                  `bun:"club_uuid,type:uuid" json:"clubId,omitempty"`
	ClubName    *string                     `bun:"club_name" json:"clubName,omitempty"`
	ScoreChange *activitydomain.ScoreChange `bun:"score_change,type:jsonb" json:"scoreChange,omitempty"`
}

// NewEntry starts an entry attributed to actor. CreatedAt is set to now.
func NewEntry(actor *userdomain.Actor, action activitydomain.Action, details string) *ActivityLog {
	return &ActivityLog{
		CreatedAt: time.Now().UTC(),
		UserUUID:  actor.UUID,
		UserName:  actor.Name,
		UserRole:  actor.Role,
		Action:    action,
		Details:   details,
	}
}

// ForClub attaches the club the entry concerns.
func (l *ActivityLog) ForClub(clubUUID uuid.UUID, clubName string) *ActivityLog {
	l.ClubUUID = &clubUUID
	l.ClubName = &clubName
	return l
}

// WithChange attaches a score delta.
func (l *ActivityLog) WithChange(c *activitydomain.ScoreChange) *ActivityLog {
	l.ScoreChange = c
	return l
}
