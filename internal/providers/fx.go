package providers

import (
	"github.com/smallbiznis/obtain/internal/providers/email"
	"github.com/smallbiznis/obtain/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
