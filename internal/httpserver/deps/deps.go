package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/speedial/speedial/internal/backup"
	"github.com/speedial/speedial/internal/githubsync"
	"github.com/speedial/speedial/internal/logger"
	"github.com/speedial/speedial/internal/state"
	"github.com/speedial/speedial/internal/store/sqlite"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	DB     *sqlite.DB         // embedded database handle (readyz pings it)
	State  *state.Manager     // in-memory mirror, owns all group/dial operations
	Todos  *sqlite.TodoStore  // todo lists have no mirror; handlers hit the store
	Codec  *backup.Codec      // export/import document codec
	Syncer *githubsync.Syncer // nil when remote sync is not configured

	RedisClient *redis.Client // thumbnail cache connection (nil when disabled)
	SyncConfig  *githubsync.Config
	SyncTrigger chan struct{} // manual daily-sync trigger (nil when sync disabled)
}

// Now returns the injected clock, falling back to time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
