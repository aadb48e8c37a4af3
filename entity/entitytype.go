package entity

import (
	"fmt"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
)

// Direction 进口道方向
// 说明：取值顺序即环形顺序[北, 西, 南, 东]，右转目标为前驱，左转目标为后继
type Direction int32

const (
	North Direction = iota
	West
	South
	East
)

// 方向数
const DirectionCount = 4

var (
	// Directions 按环形顺序排列的所有方向，也是车道编号顺序
	Directions = [DirectionCount]Direction{North, West, South, East}
	// SpawnOrder 每步生成车辆时依次处理的进口道顺序
	SpawnOrder = [DirectionCount]Direction{North, South, East, West}
)

// Right 右转后所在的方向
func (d Direction) Right() Direction {
	return (d + 3) % DirectionCount
}

// Left 左转后所在的方向
func (d Direction) Left() Direction {
	return (d + 1) % DirectionCount
}

// Axis 方向所属的信号轴
func (d Direction) Axis() Axis {
	if d == North || d == South {
		return AxisNS
	}
	return AxisEW
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case West:
		return "west"
	case South:
		return "south"
	case East:
		return "east"
	default:
		return fmt.Sprintf("Direction(%d)", int32(d))
	}
}

// Axis 信号轴（南北向/东西向）
type Axis int32

const (
	AxisNS Axis = iota
	AxisEW
)

func (a Axis) String() string {
	if a == AxisNS {
		return "NS"
	}
	return "EW"
}

// VehicleClass 车型
type VehicleClass int32

const (
	Car VehicleClass = iota
	SUV
	Truck
)

// Extent 车辆占据的车道格数，同时决定转弯所需步数
func (c VehicleClass) Extent() int32 {
	switch c {
	case Car:
		return 2
	case SUV:
		return 3
	case Truck:
		return 4
	default:
		panic(fmt.Sprintf("unknown vehicle class %d", int32(c)))
	}
}

func (c VehicleClass) String() string {
	switch c {
	case Car:
		return "car"
	case SUV:
		return "suv"
	case Truck:
		return "truck"
	default:
		return fmt.Sprintf("VehicleClass(%d)", int32(c))
	}
}

// TurnIntent 转向意图，生成时确定，之后不变
type TurnIntent int32

const (
	Straight TurnIntent = iota
	TurnRight
	TurnLeft
)

func (t TurnIntent) String() string {
	switch t {
	case Straight:
		return "straight"
	case TurnRight:
		return "right"
	case TurnLeft:
		return "left"
	default:
		return fmt.Sprintf("TurnIntent(%d)", int32(t))
	}
}

// Quadrant 路口冲突区（象限）
type Quadrant int32

const (
	NE Quadrant = iota
	NW
	SE
	SW
)

// 象限数
const QuadrantCount = 4

func (q Quadrant) String() string {
	return [...]string{"NE", "NW", "SE", "SW"}[q]
}

// Cell 车道上一个格子的只读视图，供渲染与输出使用
type Cell struct {
	Occupied bool         `json:"occupied" bson:"occupied"`
	ID       int32        `json:"id" bson:"id"`
	Class    VehicleClass `json:"class" bson:"class"`
}

// Signal 某一信号轴在当前步的灯色与距红灯剩余步数
type Signal struct {
	State     mapv2.LightState `json:"state" bson:"state"`
	TimeToRed int32            `json:"time_to_red" bson:"time_to_red"`
}

// IsRed 是否为红灯
func (s Signal) IsRed() bool {
	return s.State == mapv2.LightState_LIGHT_STATE_RED
}

// entity/vehicle/vehicle.go的依赖倒置
type IVehicle interface {
	ID() int32                 // 车辆ID，单调递增且不复用
	Handle() container.Handle  // 车辆在注册表中的句柄
	Class() VehicleClass       // 车型
	Turn() TurnIntent          // 转向意图
	Origin() Direction         // 生成时的进口道方向
	Direction() Direction      // 当前所在车道方向
	Front() int32              // 车头位置
	Back() int32               // 车尾位置
	InTurn() bool              // 是否正在转弯
	String() string
}
