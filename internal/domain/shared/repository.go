package shared

import "context"

// UnitOfWork runs fn so that every repository call made with the ctx it
// receives commits or rolls back together
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
