package ldb

import "github.com/qurulab/Waves/infrastructure/logger"

var log = logger.RegisterSubSystem("LVDB")
