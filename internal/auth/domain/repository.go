package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByID(ctx context.Context, id snowflake.ID) (bool, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
}
