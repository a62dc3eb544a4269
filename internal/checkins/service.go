package checkins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/internal/realtime"
	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
	"github.com/rodrigofuentes/gympulse-backend/pkg/logger"
)

// deniedNote is persisted on every DENIED row so the ledger explains
// itself without a join.
const deniedNote = "no active membership"

// TaggedCheckin is the dashboard-channel envelope for admission events.
type TaggedCheckin struct {
	Type string      `json:"type"`
	Data *CheckinDTO `json:"data"`
}

// Service defines the behavior needed by the checkins controller.
type Service interface {
	// Record runs the admission decision for the user and appends exactly
	// one ledger row. On denial the row and broadcasts still happen, then
	// a FORBIDDEN error is returned.
	Record(ctx context.Context, req CreateCheckinRequest) (*CheckinDTO, error)
	// IsAdmissible answers the gate question without side effects.
	IsAdmissible(ctx context.Context, userID uuid.UUID) (bool, *models.Membership, error)
	List(ctx context.Context, query ListCheckinsQuery) ([]CheckinDTO, error)
	ListToday(ctx context.Context) ([]CheckinDTO, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]CheckinDTO, error)
}

type repository interface {
	Create(ctx context.Context, checkin *models.Checkin) (*models.Checkin, error)
	List(ctx context.Context, query ListCheckinsQuery) ([]models.Checkin, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Checkin, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type membershipFinder interface {
	FindLatestActive(ctx context.Context, userID uuid.UUID) (*models.Membership, error)
}

type service struct {
	repo        repository
	users       userFinder
	memberships membershipFinder
	publisher   realtime.Publisher
	logg        *logger.Logger
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build a checkins service.
type ServiceParams struct {
	Repo           repository
	UserRepo       userFinder
	MembershipRepo membershipFinder
	Publisher      realtime.Publisher
	Logger         *logger.Logger
	Now            func() time.Time
}

// NewService constructs a checkins service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("checkins repository is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.MembershipRepo == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("realtime publisher is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		users:       params.UserRepo,
		memberships: params.MembershipRepo,
		publisher:   params.Publisher,
		logg:        params.Logger,
		now:         now,
	}, nil
}

// IsAdmissible checks the wall clock against the most-recently-ending
// ACTIVE membership. A stale ACTIVE row past its end date does not admit.
func (s *service) IsAdmissible(ctx context.Context, userID uuid.UUID) (bool, *models.Membership, error) {
	membership, err := s.memberships.FindLatestActive(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}
	if !membership.EndDate.After(s.now()) {
		return false, nil, nil
	}
	return true, membership, nil
}

func (s *service) Record(ctx context.Context, req CreateCheckinRequest) (*CheckinDTO, error) {
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	admissible, membership, err := s.IsAdmissible(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if !admissible {
		note := deniedNote
		denied, err := s.repo.Create(ctx, &models.Checkin{
			UserID: req.UserID,
			Status: enums.CheckinStatusDenied,
			Notes:  &note,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record denied checkin")
		}
		s.broadcast(denied)
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "membership_inactive").
			WithDetails(map[string]any{"checkin_id": denied.ID})
	}

	allowed, err := s.repo.Create(ctx, &models.Checkin{
		UserID:       req.UserID,
		MembershipID: &membership.ID,
		Status:       enums.CheckinStatusAllowed,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record checkin")
	}
	s.broadcast(allowed)
	return FromModel(allowed), nil
}

// broadcast pushes the admission event on both channels. The dashboard
// channel gets a tagged envelope so clients can tell a raw checkin apart
// from a metrics snapshot.
func (s *service) broadcast(checkin *models.Checkin) {
	dto := FromModel(checkin)
	s.publisher.Publish(realtime.EventCheckinUpdate, dto)
	s.publisher.Publish(realtime.EventDashboardUpdate, TaggedCheckin{Type: "checkin", Data: dto})
}

func (s *service) List(ctx context.Context, query ListCheckinsQuery) ([]CheckinDTO, error) {
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list checkins")
	}
	return toDTOs(rows), nil
}

// ListToday returns the ledger rows since local midnight.
func (s *service) ListToday(ctx context.Context) ([]CheckinDTO, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.List(ctx, ListCheckinsQuery{From: &start})
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]CheckinDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user checkins")
	}
	return toDTOs(rows), nil
}

func toDTOs(rows []models.Checkin) []CheckinDTO {
	out := make([]CheckinDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
