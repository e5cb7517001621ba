package models

import "encoding/json"

// Building categories used by the map frontend for icon colouring.
const (
	BuildingAulas          = "AULAS"
	BuildingAdministrativo = "ADMINISTRATIVO"
	BuildingLabs           = "LABS"
	BuildingServicios      = "SERVICIOS"
	BuildingAreasVerdes    = "AREAS_VERDES"
)

// Building is a campus map element.
type Building struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Code        string          `db:"code" json:"code"`
	Description *string         `db:"description" json:"description,omitempty"`
	Category    string          `db:"category" json:"category"`
	Coordinates json.RawMessage `db:"coordinates" json:"coordinates"`
	ImageURL    *string         `db:"image_url" json:"image_url,omitempty"`
	Tags        *string         `db:"tags" json:"tags,omitempty"`
}

// BuildingWithRooms bundles a building and its rooms for the detail view.
type BuildingWithRooms struct {
	Building
	Rooms []Room `json:"rooms"`
}

// Room belongs to a building.
type Room struct {
	ID         string `db:"id" json:"id"`
	BuildingID string `db:"building_id" json:"building_id"`
	Name       string `db:"name" json:"name"`
	Floor      string `db:"floor" json:"floor"`
	Type       string `db:"type" json:"type"`
}

// MapSearchResult is one hit of the hybrid building/room search.
type MapSearchResult struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"` // BUILDING or ROOM
	Name        string          `json:"name"`
	Detail      string          `json:"detail"`
	BuildingID  string          `json:"building_id"`
	Coordinates json.RawMessage `json:"coordinates"`
	Category    string          `json:"category"`
}
