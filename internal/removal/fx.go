package removal

import (
	"github.com/smallbiznis/obtain/internal/removal/repository"
	"github.com/smallbiznis/obtain/internal/removal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("removal.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
