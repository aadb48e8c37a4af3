package entity

import (
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	LaneManager() ILaneManager
	Junction() IJunction
	VehicleManager() IVehicleManager
	RuntimeConfig() *config.RuntimeConfig
}
