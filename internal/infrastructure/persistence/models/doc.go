// Package models holds the GORM row types for users, assets and loans and
// their mapping to domain aggregates. Domain types carry no ORM tags; the
// repositories in the parent package only ever hand these models to GORM.
package models
