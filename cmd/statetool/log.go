package main

import "github.com/qurulab/Waves/infrastructure/logger"

var log = logger.RegisterSubSystem("STTL")
