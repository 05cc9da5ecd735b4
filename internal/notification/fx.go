package notification

import (
	"context"

	"github.com/smallbiznis/obtain/internal/notification/dispatcher"
	"github.com/smallbiznis/obtain/internal/notification/repository"
	"github.com/smallbiznis/obtain/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewOutbox),
	fx.Provide(service.NewEmailSender),
)

// DispatcherModule runs the outbox delivery loop.
var DispatcherModule = fx.Module("notification.dispatcher",
	fx.Provide(dispatcher.ConfigFrom),
	fx.Provide(dispatcher.NewWorker),
	fx.Invoke(runDispatcher),
)

func runDispatcher(lc fx.Lifecycle, worker *dispatcher.Worker) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go worker.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
			return nil
		},
	})
}
