package interfaces

import "context"

type SchedulerInterface interface {
	Init()
	Stop()
	Sweep(ctx context.Context) error
}
