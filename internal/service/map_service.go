package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type mapRepository interface {
	ListBuildings(ctx context.Context) ([]models.Building, error)
	FindBuilding(ctx context.Context, id string) (*models.BuildingWithRooms, error)
	CreateBuilding(ctx context.Context, building *models.Building) error
	UpdateBuilding(ctx context.Context, building *models.Building) error
	DeleteBuilding(ctx context.Context, id string) error
	CreateRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, id string) error
	Search(ctx context.Context, term string) ([]models.MapSearchResult, error)
}

// BuildingRequest is the admin create/update payload.
type BuildingRequest struct {
	Name        string          `json:"name" validate:"required,min=3"`
	Code        string          `json:"code" validate:"required,max=10"`
	Description *string         `json:"description"`
	Category    string          `json:"category" validate:"required,oneof=AULAS ADMINISTRATIVO LABS SERVICIOS AREAS_VERDES"`
	Coordinates json.RawMessage `json:"coordinates" validate:"required"`
	ImageURL    *string         `json:"image_url"`
	Tags        *string         `json:"tags"`
}

// RoomRequest is the admin room payload.
type RoomRequest struct {
	Name  string `json:"name" validate:"required"`
	Floor string `json:"floor" validate:"required"`
	Type  string `json:"type" validate:"required"`
}

// MapService serves the campus map directory.
type MapService struct {
	buildings mapRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMapService constructs a MapService.
func NewMapService(buildings mapRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *MapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MapService{buildings: buildings, audit: audit, validator: validate, logger: logger}
}

// ListBuildings returns every campus building for the map render.
func (s *MapService) ListBuildings(ctx context.Context) ([]models.Building, error) {
	buildings, err := s.buildings.ListBuildings(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list buildings")
	}
	return buildings, nil
}

// GetBuilding returns a building with its rooms.
func (s *MapService) GetBuilding(ctx context.Context, id string) (*models.BuildingWithRooms, error) {
	building, err := s.buildings.FindBuilding(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "building not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch building")
	}
	return building, nil
}

// Search runs the hybrid building/room lookup.
func (s *MapService) Search(ctx context.Context, term string) ([]models.MapSearchResult, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "search term must have at least 2 characters")
	}
	results, err := s.buildings.Search(ctx, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search map")
	}
	return results, nil
}

// CreateBuilding registers a building.
func (s *MapService) CreateBuilding(ctx context.Context, req BuildingRequest, actor *models.JWTClaims) (*models.Building, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid building payload")
	}
	building := &models.Building{
		Name:        req.Name,
		Code:        strings.ToUpper(req.Code),
		Description: req.Description,
		Category:    req.Category,
		Coordinates: req.Coordinates,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	}
	if err := s.buildings.CreateBuilding(ctx, building); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create building")
	}
	s.recordAudit(ctx, actor, "CREAR_EDIFICIO", building.ID)
	return building, nil
}

// UpdateBuilding edits a building.
func (s *MapService) UpdateBuilding(ctx context.Context, id string, req BuildingRequest, actor *models.JWTClaims) (*models.Building, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid building payload")
	}
	existing, err := s.GetBuilding(ctx, id)
	if err != nil {
		return nil, err
	}
	building := &models.Building{
		ID:          existing.ID,
		Name:        req.Name,
		Code:        strings.ToUpper(req.Code),
		Description: req.Description,
		Category:    req.Category,
		Coordinates: req.Coordinates,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	}
	if err := s.buildings.UpdateBuilding(ctx, building); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update building")
	}
	s.recordAudit(ctx, actor, "EDITAR_EDIFICIO", building.ID)
	return building, nil
}

// DeleteBuilding removes a building and its rooms.
func (s *MapService) DeleteBuilding(ctx context.Context, id string, actor *models.JWTClaims) error {
	if _, err := s.GetBuilding(ctx, id); err != nil {
		return err
	}
	if err := s.buildings.DeleteBuilding(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete building")
	}
	s.recordAudit(ctx, actor, "ELIMINAR_EDIFICIO", id)
	return nil
}

// AddRoom registers a room inside a building.
func (s *MapService) AddRoom(ctx context.Context, buildingID string, req RoomRequest, actor *models.JWTClaims) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	if _, err := s.GetBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	room := &models.Room{
		BuildingID: buildingID,
		Name:       req.Name,
		Floor:      req.Floor,
		Type:       req.Type,
	}
	if err := s.buildings.CreateRoom(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	s.recordAudit(ctx, actor, "CREAR_SALON", room.ID)
	return room, nil
}

// DeleteRoom removes a room.
func (s *MapService) DeleteRoom(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := s.buildings.DeleteRoom(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	s.recordAudit(ctx, actor, "ELIMINAR_SALON", id)
	return nil
}

func (s *MapService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     action,
		Module:     models.ModuleMapa,
		ResourceID: &resourceID,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record map audit log", zap.Error(err))
	}
}
