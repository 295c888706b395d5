package app

import (
	"database/sql"

	"github.com/mbolis/quick-forms/auth"
	"github.com/mbolis/quick-forms/cache"
	"github.com/mbolis/quick-forms/config"
)

type App struct {
	*sql.DB
	*auth.Tokens
	Cache cache.FormCache
	config.Config
}
