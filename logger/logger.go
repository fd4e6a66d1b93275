package logger

import (
	"go.uber.org/zap"
)

var Log *zap.Logger

func Init() {
	var err error
	Log, err = zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
}

func init() {
	// Tests and library consumers get a usable logger without calling Init.
	Log = zap.NewNop()
}
