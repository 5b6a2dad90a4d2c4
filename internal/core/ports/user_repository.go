package ports

import (
	"context"

	"github.com/authhub/identity-service/internal/core/domain"
)

// UserUpdate carries the fields of a profile update. Nil pointers mean
// "leave unchanged", so a partial PATCH maps onto it directly.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	IsActive  *bool
}

// UserRepository defines the persistence contract for user records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
}
