package state

import "github.com/qurulab/Waves/infrastructure/logger"

var log = logger.RegisterSubSystem("STAT")
