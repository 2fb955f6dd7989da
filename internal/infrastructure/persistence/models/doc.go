// Package models contains GORM persistence models that map to database tables.
// These models are separate from domain entities so the domain layer stays
// free of ORM tags; each model carries its own ToDomain/FromDomain mappers.
package models
