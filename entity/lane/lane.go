package lane

import (
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
)

// Lane 某一方向的车道
// 功能：按格子记录车辆占用，格子[0, L)为进口道，L为停车线，L之后为驶出段或转弯并入段
// 说明：车道是每步从车辆位置重新计算的派生视图，格子中只保存车辆句柄
type Lane struct {
	direction entity.Direction

	runtime   []container.Handle // 本步正在写入的占用
	conflicts int32              // 本步被两辆不同车辆写入的格子数
}

// newLane 创建车道
// 参数：d-车道方向，length-格子数
func newLane(d entity.Direction, length int32) *Lane {
	return &Lane{
		direction: d,
		runtime:   make([]container.Handle, length),
	}
}

// prepare 准备阶段，清空本步占用与冲突计数
func (l *Lane) prepare() {
	clear(l.runtime)
	l.conflicts = 0
}

// Direction 车道方向
func (l *Lane) Direction() entity.Direction {
	return l.direction
}

// Length 格子数
func (l *Lane) Length() int32 {
	return int32(len(l.runtime))
}

// Place 将车辆写入(from, to]范围内的格子
// 功能：越界部分忽略，已被其他车辆占用的格子会被覆盖并计为冲突
// 参数：h-车辆句柄，from-车尾位置（不含），to-车头位置（含）
// 返回：本次写入产生的冲突格子数
func (l *Lane) Place(h container.Handle, from, to int32) int32 {
	var n int32
	for pos := max(from+1, 0); pos <= min(to, l.Length()-1); pos++ {
		if old := l.runtime[pos]; !old.IsNil() && old != h {
			n++
		}
		l.runtime[pos] = h
	}
	if n > 0 {
		l.conflicts += n
		log.Warnf("lane %s: %d slots in (%d, %d] claimed by two vehicles", l.direction, n, from, to)
	}
	return n
}

// IsFree 本步格子是否空闲，越界视为空闲
func (l *Lane) IsFree(pos int32) bool {
	if pos < 0 || pos >= l.Length() {
		return true
	}
	return l.runtime[pos].IsNil()
}

// HeadFree 本步入口格子是否空闲
// 说明：生成在清空车道之后、车辆推进之前进行，此时总是空闲；
// 入口被前车占用时新车以front=-1等待，由推进阶段的前方空闲检查放入
func (l *Lane) HeadFree() bool {
	return l.runtime[0].IsNil()
}

// Occupant 本步格子上的车辆句柄，空闲或越界时返回container.Nil
func (l *Lane) Occupant(pos int32) container.Handle {
	if pos < 0 || pos >= l.Length() {
		return container.Nil
	}
	return l.runtime[pos]
}

// cells 本步占用的只读视图
func (l *Lane) cells(resolve func(container.Handle) (entity.IVehicle, bool)) []entity.Cell {
	cells := make([]entity.Cell, len(l.runtime))
	for i, h := range l.runtime {
		if h.IsNil() {
			continue
		}
		v, ok := resolve(h)
		if !ok {
			log.Panicf("lane %s slot %d holds a stale handle", l.direction, i)
		}
		cells[i] = entity.Cell{Occupied: true, ID: v.ID(), Class: v.Class()}
	}
	return cells
}
