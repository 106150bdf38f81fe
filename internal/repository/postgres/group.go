package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
)

const groupColumns = `id, name, description, created_by, created_at, updated_at`

type groupRepository struct {
	BaseRepository
}

func NewGroupRepository(base BaseRepository) repository.GroupRepository {
	return &groupRepository{base}
}

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	query := `
		INSERT INTO groups (id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	group.ID = uuid.New()
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	_, err := r.exec(ctx, query, group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt, group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	var group model.Group
	if err := r.get(ctx, &group, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	ids, err := r.memberIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	group.MemberIDs = ids[id]
	return &group, nil
}

func (r *groupRepository) GetByName(ctx context.Context, name string) (*model.Group, error) {
	var group model.Group
	if err := r.get(ctx, &group, `SELECT `+groupColumns+` FROM groups WHERE LOWER(name) = LOWER($1)`, name); err != nil {
		return nil, fmt.Errorf("failed to get group by name: %w", err)
	}
	return &group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *model.Group) error {
	query := `UPDATE groups SET name = $1, description = $2, updated_at = $3 WHERE id = $4`
	group.UpdatedAt = time.Now().UTC()
	if err := r.execOne(ctx, query, group.Name, group.Description, group.UpdatedAt, group.ID); err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.execOne(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

func (r *groupRepository) List(ctx context.Context) ([]*model.Group, error) {
	var groups []*model.Group
	if err := r.selectAll(ctx, &groups, `SELECT `+groupColumns+` FROM groups ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	ids := make([]uuid.UUID, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	members, err := r.memberIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		g.MemberIDs = members[g.ID]
	}
	return groups, nil
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	query := `
		INSERT INTO group_members (group_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	if _, err := r.exec(ctx, query, groupID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	if err := r.execOne(ctx, `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID); err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	return nil
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*model.User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.role, u.status, u.phone,
			u.failed_login_attempts, u.locked_until, u.last_login_at, u.created_at, u.updated_at
		FROM users u
		JOIN group_members gm ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY u.last_name, u.first_name
	`
	var users []*model.User
	if err := r.selectAll(ctx, &users, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return users, nil
}

type membership struct {
	GroupID uuid.UUID `db:"group_id"`
	UserID  uuid.UUID `db:"user_id"`
}

func (r *groupRepository) memberIDs(ctx context.Context, groupIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	query := `SELECT group_id, user_id FROM group_members WHERE group_id = ANY($1) ORDER BY created_at`

	var rows []membership
	if err := r.selectAll(ctx, &rows, query, model.UUIDStrings(groupIDs)); err != nil {
		return nil, fmt.Errorf("failed to load group members: %w", err)
	}

	out := make(map[uuid.UUID][]uuid.UUID, len(groupIDs))
	for _, id := range groupIDs {
		out[id] = []uuid.UUID{}
	}
	for _, m := range rows {
		out[m.GroupID] = append(out[m.GroupID], m.UserID)
	}
	return out, nil
}
