package models

import (
	"github.com/erp/stockflow/internal/domain/partner"
)

// SupplierModel is the persistence model for suppliers
type SupplierModel struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{BaseEntity: m.BaseModel.ToDomain(), Name: m.Name}
}

// SupplierModelFromDomain creates a persistence model from a domain Supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{Name: s.Name}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// CustomerModel is the persistence model for customers
type CustomerModel struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{BaseEntity: m.BaseModel.ToDomain(), Name: m.Name}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{Name: c.Name}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
