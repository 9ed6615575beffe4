// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain types so the domain stays free of ORM tags;
// each model converts with ToDomain and a ...FromDomain constructor.
//
// The SQL schema in migrations/ is authoritative. AutoMigrate on these models is
// only used to build throwaway SQLite schemas in tests.
package models
