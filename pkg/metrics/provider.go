package metrics

import (
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(Default)
