// Package repomanager builds repositories bound to a *sql.DB or a *sql.Tx,
// so services can run several repository calls inside one transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/avolkov/blogpulse/internal/dbx"
	"github.com/avolkov/blogpulse/internal/server/repositories/blogs"
	"github.com/avolkov/blogpulse/internal/server/repositories/comments"
	"github.com/avolkov/blogpulse/internal/server/repositories/notifications"
	"github.com/avolkov/blogpulse/internal/server/repositories/refreshtokens"
	"github.com/avolkov/blogpulse/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	Blogs(db dbx.DBTX) blogs.Repository
	Comments(db dbx.DBTX) comments.Repository

	RunMigrations(ctx context.Context, db *sql.DB) error
}
