package seed

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/config"
	"github.com/smallbiznis/obtain/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	bootstrapLockKey = "seed:bootstrap"
	bootstrapLockTTL = 30 * time.Second
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Config config.Config
	Locker *ratelimit.Locker `optional:"true"`
}

var Module = fx.Module("seed",
	fx.Invoke(Run),
)

// Run seeds at startup. With redis configured only one replica seeds at a
// time; the others skip.
func Run(p Params) error {
	log := p.Log.Named("seed")
	ctx, cancel := context.WithTimeout(context.Background(), bootstrapLockTTL)
	defer cancel()

	if p.Locker != nil {
		token, ok, err := p.Locker.TryLock(ctx, bootstrapLockKey, bootstrapLockTTL)
		if err != nil {
			log.Warn("seed lock unavailable, seeding without it", zap.Error(err))
		} else if !ok {
			log.Info("seed already running on another instance")
			return nil
		} else {
			defer func() {
				if err := p.Locker.Release(context.Background(), bootstrapLockKey, token); err != nil {
					log.Warn("failed to release seed lock", zap.Error(err))
				}
			}()
		}
	}

	if err := Bootstrap(ctx, p.DB, p.GenID, p.Config.Bootstrap, p.Clock.Now()); err != nil {
		return err
	}
	log.Info("bootstrap data ensured",
		zap.Bool("pricing", p.Config.Bootstrap.SeedPricing),
		zap.Bool("admin", p.Config.Bootstrap.AdminEmail != ""),
	)
	return nil
}
