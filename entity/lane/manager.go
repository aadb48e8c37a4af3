package lane

import (
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
)

// LaneManager Lane管理器
// 功能：管理路口四个方向的车道，提供按方向查找、准备阶段与只读视图
type LaneManager struct {
	approachLength int32
	lanes          [entity.DirectionCount]*Lane
}

// NewManager 创建Lane管理器实例
// 功能：按环形方向顺序创建四条长度为2L+2的车道
// 参数：approachLength-路口前的格子数L
// 返回：新创建的Lane管理器实例
func NewManager(approachLength int32) *LaneManager {
	m := &LaneManager{approachLength: approachLength}
	for _, d := range entity.Directions {
		m.lanes[d] = newLane(d, 2*approachLength+2)
	}
	return m
}

// ApproachLength 路口前的格子数L
func (m *LaneManager) ApproachLength() int32 {
	return m.approachLength
}

// Get 根据方向获取Lane实例，方向非法时panic
func (m *LaneManager) Get(d entity.Direction) entity.ILane {
	if d < 0 || d >= entity.DirectionCount {
		log.Panicf("no direction %d in lane data", d)
	}
	return m.lanes[d]
}

// GetOrError 根据方向获取Lane实例（带错误处理）
func (m *LaneManager) GetOrError(d entity.Direction) (entity.ILane, error) {
	if d < 0 || d >= entity.DirectionCount {
		return nil, fmt.Errorf("no direction %d in lane data", d)
	}
	return m.lanes[d], nil
}

// Prepare 准备阶段，清空所有车道
func (m *LaneManager) Prepare() {
	parallel.GoFor(m.lanes[:], func(l *Lane) { l.prepare() })
}

// Cells 本步四条车道的只读视图，按方向下标排列
func (m *LaneManager) Cells(resolve func(container.Handle) (entity.IVehicle, bool)) [entity.DirectionCount][]entity.Cell {
	var res [entity.DirectionCount][]entity.Cell
	for d, l := range m.lanes {
		res[d] = l.cells(resolve)
	}
	return res
}

// Conflicts 本步累计的格子冲突数
func (m *LaneManager) Conflicts() int32 {
	return lo.SumBy(m.lanes[:], func(l *Lane) int32 { return l.conflicts })
}
