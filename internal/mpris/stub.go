//go:build !linux

package mpris

import "github.com/sirupsen/logrus"

// Adapter is never constructed off Linux.
type Adapter struct{}

func New(Controller, *logrus.Entry) (*Adapter, error) {
	return nil, ErrUnsupported
}

func (*Adapter) Close() error { return nil }
