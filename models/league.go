package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// League represents a football competition
type League struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Country   string             `bson:"country" json:"country"`
	Level     int                `bson:"level,omitempty" json:"level,omitempty"`
	Type      string             `bson:"type,omitempty" json:"type,omitempty"`
	LogoURL   string             `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Team represents a club or national side
type Team struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Code        string               `bson:"code,omitempty" json:"code,omitempty"`
	Country     string               `bson:"country,omitempty" json:"country,omitempty"`
	LeagueIDs   []primitive.ObjectID `bson:"league_ids" json:"league_ids"`
	FoundedYear int                  `bson:"founded_year,omitempty" json:"founded_year,omitempty"`
	National    bool                 `bson:"national" json:"national"`
	VenueName   string               `bson:"venue_name,omitempty" json:"venue_name,omitempty"`
	VenueCity   string               `bson:"venue_city,omitempty" json:"venue_city,omitempty"`
	LogoURL     string               `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	IsActive    bool                 `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}
