// Package staff is the registry of employees that housekeeping tasks are
// assigned to.
package staff

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/pagination"
)

const (
	maxNameLength = 120
	maxRoleLength = 60
)

type RegisterInput struct {
	Name string
	Role string
}

// ListResult is one page of staff members.
type ListResult struct {
	Staff      []models.Staff
	NextCursor string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Staff, error)
	Get(ctx context.Context, id uint) (*models.Staff, error)
	List(ctx context.Context, status enums.StaffStatus, params pagination.Params) (*ListResult, error)
	SetStatus(ctx context.Context, id uint, status enums.StaffStatus) (*models.Staff, error)
	// Assignable loads an active staff member inside a caller-owned
	// transaction.
	Assignable(ctx context.Context, tx *gorm.DB, id uint) (*models.Staff, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("staff repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Staff, error) {
	name := strings.TrimSpace(input.Name)
	role := strings.TrimSpace(input.Role)
	switch {
	case name == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff name required")
	case role == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff role required")
	case len([]rune(name)) > maxNameLength, len([]rune(role)) > maxRoleLength:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff name or role too long")
	}

	member := &models.Staff{Name: name, Role: role, Status: enums.StaffActive}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create staff member")
	}
	return member, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Staff, error) {
	return s.load(ctx, s.repo, id)
}

func (s *service) Assignable(ctx context.Context, tx *gorm.DB, id uint) (*models.Staff, error) {
	member, err := s.load(ctx, s.repo.WithTx(tx), id)
	if err != nil {
		return nil, err
	}
	if member.Status != enums.StaffActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee is not an active staff member").
			WithDetails(map[string]any{"staff_id": member.ID, "status": member.Status})
	}
	return member, nil
}

func (s *service) load(ctx context.Context, r Repository, id uint) (*models.Staff, error) {
	if id == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	member, err := r.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff member not found").
				WithDetails(map[string]any{"staff_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load staff member")
	}
	return member, nil
}

func (s *service) List(ctx context.Context, status enums.StaffStatus, params pagination.Params) (*ListResult, error) {
	if status != "" && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff status filter")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, status, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list staff")
	}
	page, next := pagination.Page(rows, params.Limit, func(m models.Staff) uint { return m.ID })
	return &ListResult{Staff: page, NextCursor: next}, nil
}

// SetStatus deactivates or reactivates a member. Tasks already assigned keep
// their assignee.
func (s *service) SetStatus(ctx context.Context, id uint, status enums.StaffStatus) (*models.Staff, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff status").
			WithDetails(map[string]any{"status": status})
	}
	if id == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	ok, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update staff status")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff member not found").
			WithDetails(map[string]any{"staff_id": id})
	}
	return s.Get(ctx, id)
}
