package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/jukebox/internal/repository/room"
)

type ConnectMemberParams struct {
	Username string
	ConnId   string
	RoomId   string
}

type ConnectMemberResponse struct {
	Role room.Role
	// IsActivated is set for the connection that brought the room online.
	IsActivated bool
}

// ConnectMember registers the member and its connection. The first member that ever
// joins a room owns it and moderates it.
func (s service) ConnectMember(ctx context.Context, params *ConnectMemberParams) (ConnectMemberResponse, error) {
	role, err := s.roomRepo.GetMemberRole(ctx, &room.GetMemberParams{
		Username: params.Username,
		RoomId:   params.RoomId,
	})
	if err != nil {
		if !errors.Is(err, room.ErrMemberNotFound) {
			return ConnectMemberResponse{}, fmt.Errorf("failed to get member role: %w", err)
		}

		role = room.RoleMember
		isOwner, err := s.roomRepo.ClaimOwner(ctx, &room.ClaimOwnerParams{
			Username: params.Username,
			RoomId:   params.RoomId,
		})
		if err != nil {
			return ConnectMemberResponse{}, fmt.Errorf("failed to claim owner: %w", err)
		}
		if isOwner {
			role = room.RoleModerator
		}

		if err := s.roomRepo.SetMember(ctx, &room.SetMemberParams{
			Username: params.Username,
			Role:     role,
			RoomId:   params.RoomId,
		}); err != nil {
			return ConnectMemberResponse{}, fmt.Errorf("failed to set member: %w", err)
		}
	}

	if _, ok := s.moderators[params.Username]; ok {
		role = room.RoleModerator
	}

	now := s.now()
	count, err := s.roomRepo.AddConn(ctx, &room.AddConnParams{
		ConnId:    params.ConnId,
		Now:       now,
		ExpiresAt: now.Add(s.connTTL),
		RoomId:    params.RoomId,
	})
	if err != nil {
		return ConnectMemberResponse{}, fmt.Errorf("failed to add conn: %w", err)
	}

	return ConnectMemberResponse{
		Role:        role,
		IsActivated: count == 1,
	}, nil
}

type KeepAliveParams struct {
	ConnId string
	RoomId string
}

// KeepAlive pushes the connection deadline forward by the configured TTL.
func (s service) KeepAlive(ctx context.Context, params *KeepAliveParams) error {
	if err := s.roomRepo.RefreshConn(ctx, &room.RefreshConnParams{
		ConnId:    params.ConnId,
		ExpiresAt: s.now().Add(s.connTTL),
		RoomId:    params.RoomId,
	}); err != nil {
		return fmt.Errorf("failed to refresh conn: %w", err)
	}

	return nil
}

type DisconnectMemberParams struct {
	ConnId string
	RoomId string
}

func (s service) DisconnectMember(ctx context.Context, params *DisconnectMemberParams) error {
	if _, err := s.roomRepo.RemoveConn(ctx, &room.RemoveConnParams{
		ConnId: params.ConnId,
		RoomId: params.RoomId,
	}); err != nil {
		return fmt.Errorf("failed to remove conn: %w", err)
	}

	return nil
}

// checkIfModerator reports false without an error for unknown members so callers
// can ignore the request silently.
func (s service) checkIfModerator(ctx context.Context, roomId, username string) (bool, error) {
	if _, ok := s.moderators[username]; ok {
		return true, nil
	}

	role, err := s.roomRepo.GetMemberRole(ctx, &room.GetMemberParams{
		Username: username,
		RoomId:   roomId,
	})
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("failed to get member role: %w", err)
	}

	return role == room.RoleModerator, nil
}
