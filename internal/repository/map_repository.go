package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// MapRepository manages campus buildings and rooms.
type MapRepository struct {
	db *sqlx.DB
}

// NewMapRepository constructs a MapRepository.
func NewMapRepository(db *sqlx.DB) *MapRepository {
	return &MapRepository{db: db}
}

const buildingColumns = "id, name, code, description, category, coordinates, image_url, tags"

// ListBuildings returns every campus building.
func (r *MapRepository) ListBuildings(ctx context.Context) ([]models.Building, error) {
	query := fmt.Sprintf("SELECT %s FROM buildings ORDER BY name ASC", buildingColumns)
	var buildings []models.Building
	if err := r.db.SelectContext(ctx, &buildings, query); err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	return buildings, nil
}

// FindBuilding fetches one building with its rooms.
func (r *MapRepository) FindBuilding(ctx context.Context, id string) (*models.BuildingWithRooms, error) {
	query := fmt.Sprintf("SELECT %s FROM buildings WHERE id = $1", buildingColumns)
	var building models.Building
	if err := r.db.GetContext(ctx, &building, query, id); err != nil {
		return nil, err
	}
	rooms, err := r.ListRooms(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.BuildingWithRooms{Building: building, Rooms: rooms}, nil
}

// CreateBuilding inserts a building.
func (r *MapRepository) CreateBuilding(ctx context.Context, building *models.Building) error {
	if building.ID == "" {
		building.ID = uuid.NewString()
	}
	const query = `INSERT INTO buildings (id, name, code, description, category, coordinates, image_url, tags)
        VALUES (:id, :name, :code, :description, :category, :coordinates, :image_url, :tags)`
	if _, err := r.db.NamedExecContext(ctx, query, building); err != nil {
		return fmt.Errorf("create building: %w", err)
	}
	return nil
}

// UpdateBuilding modifies a building.
func (r *MapRepository) UpdateBuilding(ctx context.Context, building *models.Building) error {
	const query = `UPDATE buildings SET name = :name, code = :code, description = :description,
        category = :category, coordinates = :coordinates, image_url = :image_url, tags = :tags WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, building); err != nil {
		return fmt.Errorf("update building: %w", err)
	}
	return nil
}

// DeleteBuilding removes a building and its rooms.
func (r *MapRepository) DeleteBuilding(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete building: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE building_id = $1", id); err != nil {
		return fmt.Errorf("delete building rooms: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM buildings WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete building: %w", err)
	}
	return tx.Commit()
}

// ListRooms returns a building's rooms ordered by floor then name.
func (r *MapRepository) ListRooms(ctx context.Context, buildingID string) ([]models.Room, error) {
	const query = `SELECT id, building_id, name, floor, type FROM rooms WHERE building_id = $1 ORDER BY floor ASC, name ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, buildingID); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// CreateRoom inserts a room.
func (r *MapRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	const query = `INSERT INTO rooms (id, building_id, name, floor, type)
        VALUES (:id, :building_id, :name, :floor, :type)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// DeleteRoom removes a room.
func (r *MapRepository) DeleteRoom(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

// Search matches buildings by name, code or tags and rooms by name, returning
// a mixed result set. Room hits carry their building's coordinates so the
// frontend can centre the map.
func (r *MapRepository) Search(ctx context.Context, term string) ([]models.MapSearchResult, error) {
	like := "%" + strings.ToLower(term) + "%"

	const buildingQuery = `SELECT id, name, code, category, coordinates FROM buildings
        WHERE LOWER(name) LIKE $1 OR LOWER(code) LIKE $1 OR LOWER(COALESCE(tags, '')) LIKE $1
        ORDER BY name ASC LIMIT 20`
	var buildings []models.Building
	if err := r.db.SelectContext(ctx, &buildings, buildingQuery, like); err != nil {
		return nil, fmt.Errorf("search buildings: %w", err)
	}

	const roomQuery = `SELECT r.id, r.building_id, r.name, r.floor, r.type,
        b.name AS building_name, b.category AS building_category, b.coordinates AS building_coordinates
        FROM rooms r JOIN buildings b ON b.id = r.building_id
        WHERE LOWER(r.name) LIKE $1 ORDER BY r.name ASC LIMIT 20`
	var rooms []roomHit
	if err := r.db.SelectContext(ctx, &rooms, roomQuery, like); err != nil {
		return nil, fmt.Errorf("search rooms: %w", err)
	}

	results := make([]models.MapSearchResult, 0, len(buildings)+len(rooms))
	for _, b := range buildings {
		results = append(results, models.MapSearchResult{
			ID:          b.ID,
			Type:        "BUILDING",
			Name:        b.Name,
			Detail:      b.Code,
			BuildingID:  b.ID,
			Coordinates: b.Coordinates,
			Category:    b.Category,
		})
	}
	for _, room := range rooms {
		results = append(results, models.MapSearchResult{
			ID:          room.ID,
			Type:        "ROOM",
			Name:        room.Name,
			Detail:      fmt.Sprintf("%s, piso %s", room.BuildingName, room.Floor),
			BuildingID:  room.BuildingID,
			Coordinates: room.BuildingCoordinates,
			Category:    room.BuildingCategory,
		})
	}
	return results, nil
}

type roomHit struct {
	models.Room
	BuildingName        string          `db:"building_name"`
	BuildingCategory    string          `db:"building_category"`
	BuildingCoordinates json.RawMessage `db:"building_coordinates"`
}
