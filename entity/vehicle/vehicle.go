package vehicle

import (
	"fmt"

	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
)

// Vehicle 车辆实体
// 功能：保存车辆的身份与运动状态，车辆位置以所在车道的格子下标表示
// 说明：front为车头所在格子，back为车尾之后的格子（不占用），车辆占用(back, front]
type Vehicle struct {
	handle container.Handle

	id        int32
	class     entity.VehicleClass
	turn      entity.TurnIntent
	origin    entity.Direction // 生成时的进口道方向，信号灯与通行时间按此判断
	direction entity.Direction // 当前所在车道方向，转弯完成时改变一次

	front, back int32
	inTurn      bool
	turnPhase   int32 // 已完成的转弯阶段数

	spawnStep int32 // 生成时的步数
	held      int32 // 未能前进的累计步数
	retired   bool  // 已驶出车道，下一步准备阶段回收
}

func newVehicle(id int32, class entity.VehicleClass, turn entity.TurnIntent, origin entity.Direction, step int32) Vehicle {
	return Vehicle{
		id:        id,
		class:     class,
		turn:      turn,
		origin:    origin,
		direction: origin,
		front:     -1,
		back:      -1,
		spawnStep: step,
	}
}

func (v *Vehicle) ID() int32 {
	return v.id
}

func (v *Vehicle) Handle() container.Handle {
	return v.handle
}

func (v *Vehicle) Class() entity.VehicleClass {
	return v.class
}

func (v *Vehicle) Turn() entity.TurnIntent {
	return v.turn
}

func (v *Vehicle) Origin() entity.Direction {
	return v.origin
}

func (v *Vehicle) Direction() entity.Direction {
	return v.direction
}

func (v *Vehicle) Front() int32 {
	return v.front
}

func (v *Vehicle) Back() int32 {
	return v.back
}

func (v *Vehicle) InTurn() bool {
	return v.inTurn
}

// Held 未能前进的累计步数
func (v *Vehicle) Held() int32 {
	return v.held
}

// Extent 车长（格子数）
func (v *Vehicle) Extent() int32 {
	return v.class.Extent()
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle{id=%d, %s %s from %s, lane=%s, (%d, %d], inTurn=%v}",
		v.id, v.class, v.turn, v.origin, v.direction, v.back, v.front, v.inTurn)
}

// moveStraight 沿当前车道前进一格，不做任何检查
// 参数：l-路口前的格子数L
// 算法说明：
// 1. 车头未过停车线时车头前进，车尾由车头推出，不小于-1
// 2. 否则车尾前进，车头由车尾推出，不超过末格2L+1
func (v *Vehicle) moveStraight(l int32) {
	ext := v.Extent()
	if v.front < l {
		v.front++
		v.back = max(-1, v.front-ext)
	} else {
		v.back++
		v.front = min(2*l+1, v.back+ext)
	}
}
