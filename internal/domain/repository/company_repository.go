package repository

import (
	"context"

	"github.com/facturadom/gestion-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para empresas.
type CompanyRepository interface {
	Create(ctx context.Context, c *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
}

// UserRepository define el puerto de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByEmailAndCompany(ctx context.Context, email, companyID string) (*entity.User, error)
}

// CashRegisterRepository define el puerto de persistencia para cajas físicas.
type CashRegisterRepository interface {
	Create(ctx context.Context, r *entity.CashRegister) error
	GetByID(ctx context.Context, id string) (*entity.CashRegister, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.CashRegister, error)
}

// CustomerRepository define el puerto de persistencia para clientes.
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Customer, error)
}
