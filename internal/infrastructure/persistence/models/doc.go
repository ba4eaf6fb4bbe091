// Package models contains the gorm persistence models. Each model maps one
// table and converts to and from its domain entity.
package models
