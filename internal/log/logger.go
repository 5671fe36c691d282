package log

import (
	"go.uber.org/zap"
)

var base *zap.Logger = zap.NewNop()

// Init builds the process logger: production JSON encoding, or the dev
// console encoder when dev is true. The logger is also kept as a package
// global for call sites without a handle.
func Init(dev bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	base = l
	return l, nil
}

func L() *zap.Logger { return base }

func Sync() { _ = base.Sync() }
