package room

import "time"

type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
)

type SetMemberParams struct {
	Username string
	Role     Role
	RoomId   string
}

type GetMemberParams struct {
	Username string
	RoomId   string
}

type ClaimOwnerParams struct {
	Username string
	RoomId   string
}

// AddConnParams registers a connection alive until ExpiresAt. Connections whose
// deadline is before Now are dropped first.
type AddConnParams struct {
	ConnId    string
	Now       time.Time
	ExpiresAt time.Time
	RoomId    string
}

type RefreshConnParams struct {
	ConnId    string
	ExpiresAt time.Time
	RoomId    string
}

type RemoveConnParams struct {
	ConnId string
	RoomId string
}
