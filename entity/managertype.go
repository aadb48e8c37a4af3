package entity

import (
	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
)

// Manager依赖倒置

// entity/lane/lane.go的依赖倒置
type ILane interface {
	Direction() Direction // 车道方向
	Length() int32        // 格子数（2L+2）

	// 将车辆写入(from, to]范围内的格子，越界部分忽略，返回与其他车辆冲突的格子数
	Place(h container.Handle, from, to int32) int32
	// 本步格子是否空闲，越界视为空闲
	IsFree(pos int32) bool
	// 本步车道入口格子是否空闲
	HeadFree() bool
	// 本步格子上的车辆句柄
	Occupant(pos int32) container.Handle
}

// entity/lane/manager.go的依赖倒置
type ILaneManager interface {
	// 按方向获取车道
	Get(d Direction) ILane
	// 路口前的格子数L
	ApproachLength() int32

	Prepare() // 准备阶段，清空车道

	// 本步车道的只读视图，resolve用于把句柄解析为车辆
	Cells(resolve func(container.Handle) (IVehicle, bool)) [DirectionCount][]Cell
	// 本步累计的格子冲突数
	Conflicts() int32
}

// entity/junction/junction.go的依赖倒置
type IJunction interface {
	Register(sidecar *syncer.Sidecar) // 注册到Sidecar

	Prepare(step int32) // 准备阶段，计算本步灯色
	Update()            // 更新阶段，冲突区计数衰减

	// 指定信号轴本步的灯色
	Signal(axis Axis) Signal
	// 申请通过路口所需的冲突区，成功则写入占用计数
	Reserve(d Direction, turn TurnIntent, extent int32) bool
	// 冲突区当前计数
	Section(q Quadrant) int32
}

// entity/vehicle/manager.go的依赖倒置
type IVehicleManager interface {
	// 输入车辆ID，查找车辆，如果不存在则panic
	Get(id int32) IVehicle
	// 输入车辆ID，查找车辆，如果不存在则返回error
	GetOrError(id int32) (IVehicle, error)
	// 根据句柄查找车辆
	Resolve(h container.Handle) (IVehicle, bool)
	// 在册车辆数
	Len() int

	Prepare() // 准备阶段，回收已驶离车辆
	Spawn()   // 四个进口道尝试生成车辆
	Update()  // 更新阶段，按生成顺序推进所有车辆
}
