package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/log"
)

const healthTimeout = 2 * time.Second

// Health reports OK when both the database and the form cache answer a ping.
func Health(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := app.PingContext(ctx); err != nil {
			log.Errorf("health.db: %s", err)
			http.Error(w, "Not OK", http.StatusInternalServerError)
			return
		}
		if err := app.Cache.Ping(ctx); err != nil {
			log.Errorf("health.cache: %s", err)
			http.Error(w, "Not OK", http.StatusInternalServerError)
			return
		}

		w.Write([]byte("OK"))
	}
}
