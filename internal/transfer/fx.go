package transfer

import (
	"github.com/smallbiznis/stockyard/internal/transfer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transfer.service",
	fx.Provide(service.New),
)
