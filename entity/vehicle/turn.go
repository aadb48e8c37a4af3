package vehicle

import (
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// turnGeometry 转弯的几何参数
type turnGeometry struct {
	target func(entity.Direction) entity.Direction // 转弯后所在方向
	first  int32                                   // 第一阶段车头在目标车道的格子相对L的偏移
	settle int32                                   // 转弯完成后车尾相对L的偏移
}

var turnGeometries = map[entity.TurnIntent]turnGeometry{
	entity.TurnRight: {target: entity.Direction.Right, first: 2, settle: 0},
	entity.TurnLeft:  {target: entity.Direction.Left, first: 1, settle: -1},
}

// advanceTurn 推进一个转弯阶段
// 功能：转弯共extent-1个阶段，第k个阶段车辆同时占用目标车道与原车道
// 算法说明：
// 1. 目标车道占用(L+first-1, L+first+k-1]，车头移到L+first+k-1
// 2. 原车道占用(L-extent+k, L]，即每个阶段让出一格
// 3. 最后一个阶段结束转弯，当前方向改为目标方向，车尾置为L+settle
func (m *VehicleManager) advanceTurn(v *Vehicle) {
	g, ok := turnGeometries[v.turn]
	if !ok {
		log.Panicf("vehicle %v is turning without a turn intent", v)
	}
	lanes := m.ctx.LaneManager()
	l := lanes.ApproachLength()
	ext := v.Extent()
	k := v.turnPhase + 1
	target := g.target(v.origin)

	lanes.Get(target).Place(v.handle, l+g.first-1, l+g.first+k-1)
	lanes.Get(v.origin).Place(v.handle, l-ext+k, l)
	v.front = l + g.first + k - 1
	v.turnPhase = k

	if k == ext-1 {
		v.inTurn = false
		v.direction = target
		v.back = l + g.settle
		m.stats.Turned++
		log.Debugf("turn complete %v", v)
	}
}
