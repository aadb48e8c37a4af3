package vehicle

import (
	"fmt"

	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/randengine"
)

// Statistics 车辆统计
type Statistics struct {
	Spawned [entity.DirectionCount]int32 `json:"spawned"` // 各进口道生成车辆数
	Exited  int32                        `json:"exited"`  // 驶出车道的车辆数
	Turned  int32                        `json:"turned"`  // 完成转弯的车辆数
	Held    int64                        `json:"held"`    // 车辆未能前进的累计车·步
}

// VehicleManager 车辆管理器
// 功能：车辆注册表，负责车辆的生成、逐步推进与驶离后的回收
// 说明：车辆保存在稳定地址的竞技场中，车道只保存车辆句柄；推进顺序为生成顺序
type VehicleManager struct {
	ctx entity.ITaskContext

	arena  *container.Arena[Vehicle]
	order  []container.Handle          // 在册车辆，按生成顺序
	data   map[int32]container.Handle  // 车辆ID->句柄
	nextID int32                       // 下一个车辆ID，单调递增不复用

	pending [entity.DirectionCount]int32 // 各进口道尚未进入车道的车辆数

	generator *randengine.Engine
	spawn     config.Spawn

	stats Statistics
}

// NewManager 创建车辆管理器实例
// 参数：ctx-任务上下文，生成参数与随机种子取自其运行时配置
// 返回：新创建的车辆管理器实例
func NewManager(ctx entity.ITaskContext) *VehicleManager {
	rc := ctx.RuntimeConfig()
	return &VehicleManager{
		ctx:       ctx,
		arena:     container.NewArena[Vehicle](),
		order:     make([]container.Handle, 0),
		data:      make(map[int32]container.Handle),
		generator: randengine.New(rc.Seed),
		spawn:     rc.All.Spawn,
	}
}

// Get 根据ID获取车辆，如果不存在则panic
func (m *VehicleManager) Get(id int32) entity.IVehicle {
	if v, err := m.GetOrError(id); err != nil {
		log.Panic(err)
		return nil
	} else {
		return v
	}
}

// GetOrError 根据ID获取车辆，如果不存在或已回收则返回错误
func (m *VehicleManager) GetOrError(id int32) (entity.IVehicle, error) {
	h, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("no id %d in vehicle data", id)
	}
	v, ok := m.arena.Get(h)
	if !ok {
		return nil, fmt.Errorf("vehicle %d has a stale handle", id)
	}
	return v, nil
}

// Resolve 根据句柄获取车辆
func (m *VehicleManager) Resolve(h container.Handle) (entity.IVehicle, bool) {
	v, ok := m.arena.Get(h)
	if !ok {
		return nil, false
	}
	return v, true
}

// Len 在册车辆数
func (m *VehicleManager) Len() int {
	return m.arena.Len()
}

// Waiting 指定进口道已生成但尚未进入车道的车辆数
func (m *VehicleManager) Waiting(d entity.Direction) int32 {
	return m.pending[d]
}

// Statistics 车辆统计
func (m *VehicleManager) Statistics() Statistics {
	return m.stats
}

// Queue 指定进口道停车线前（格子[0, L)内）的车辆数
func (m *VehicleManager) Queue(d entity.Direction) int {
	l := m.ctx.LaneManager().ApproachLength()
	n := 0
	for _, h := range m.order {
		v := m.mustGet(h)
		if v.direction == d && !v.inTurn && v.front >= 0 && v.front < l {
			n++
		}
	}
	return n
}

func (m *VehicleManager) mustGet(h container.Handle) *Vehicle {
	v, ok := m.arena.Get(h)
	if !ok {
		log.Panicf("stale vehicle handle %d", h.Index())
	}
	return v
}

// add 将车辆加入注册表末尾
func (m *VehicleManager) add(v Vehicle) *Vehicle {
	h, p := m.arena.Insert(v)
	p.handle = h
	m.order = append(m.order, h)
	m.data[p.id] = h
	return p
}

// Prepare 准备阶段，回收上一步已驶出车道的车辆
// 说明：回收后句柄失效，其槽位可被之后生成的车辆复用，车辆ID不复用
func (m *VehicleManager) Prepare() {
	kept := m.order[:0]
	for _, h := range m.order {
		v := m.mustGet(h)
		if !v.retired {
			kept = append(kept, h)
			continue
		}
		log.Debugf("retire %v", v)
		delete(m.data, v.id)
		m.arena.Release(h)
	}
	clear(m.order[len(kept):])
	m.order = kept
}

// Range 按生成顺序遍历在册车辆
func (m *VehicleManager) Range(f func(v entity.IVehicle)) {
	for _, h := range m.order {
		f(m.mustGet(h))
	}
}
