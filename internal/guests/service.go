package guests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/pagination"
)

// RegisterInput carries the identity fields of a new guest.
type RegisterInput struct {
	Name      string
	Document  string
	Phone     string
	Plate     string
	BirthDate *time.Time
}

// ListResult is one page of guests.
type ListResult struct {
	Guests     []models.Guest
	NextCursor string
}

// Service is the guest registry.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Guest, error)
	Get(ctx context.Context, id uint) (*models.Guest, error)
	List(ctx context.Context, query string, params pagination.Params) (*ListResult, error)
	// Load reads a guest inside a caller-owned transaction.
	Load(ctx context.Context, tx *gorm.DB, id uint) (*models.Guest, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("guests repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Guest, error) {
	name := strings.TrimSpace(input.Name)
	document := NormalizeDocument(input.Document)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest name required")
	}
	if document == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest document required")
	}
	if input.BirthDate != nil && input.BirthDate.After(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "birth date cannot be in the future")
	}

	guest := &models.Guest{
		Name:      name,
		Document:  document,
		Phone:     strings.TrimSpace(input.Phone),
		Plate:     strings.ToUpper(strings.TrimSpace(input.Plate)),
		BirthDate: input.BirthDate,
	}
	if err := s.repo.Create(ctx, guest); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "guest document already registered").
				WithDetails(map[string]any{"document": document})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create guest")
	}
	return guest, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Guest, error) {
	return s.load(ctx, s.repo, id)
}

func (s *service) Load(ctx context.Context, tx *gorm.DB, id uint) (*models.Guest, error) {
	return s.load(ctx, s.repo.WithTx(tx), id)
}

func (s *service) load(ctx context.Context, r Repository, id uint) (*models.Guest, error) {
	if id == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest id required")
	}
	guest, err := r.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "guest not found").
				WithDetails(map[string]any{"guest_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load guest")
	}
	return guest, nil
}

func (s *service) List(ctx context.Context, query string, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, query, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list guests")
	}
	page, next := pagination.Page(rows, params.Limit, func(g models.Guest) uint { return g.ID })
	return &ListResult{Guests: page, NextCursor: next}, nil
}

// NormalizeDocument strips the punctuation commonly typed into CPF numbers
// ("123.456.789-00") and upper-cases passport numbers.
func NormalizeDocument(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch r {
		case '.', '-', '/', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
