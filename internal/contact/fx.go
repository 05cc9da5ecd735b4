package contact

import (
	"github.com/smallbiznis/obtain/internal/contact/domain"
	"github.com/smallbiznis/obtain/internal/contact/service"
	"github.com/smallbiznis/obtain/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("contact.service",
	fx.Provide(repository.ProvideStore[domain.Message]),
	fx.Provide(service.New),
)
