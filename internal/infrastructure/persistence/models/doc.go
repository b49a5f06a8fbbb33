// Package models holds the GORM table mappings. Domain aggregates stay free
// of ORM tags; each model here carries the annotations for one table and
// converts to and from its domain counterpart. Repositories only ever touch
// the database through these models.
package models
