package vehicle

import (
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// Update 更新阶段，按生成顺序推进所有在册车辆
// 说明：后生成车辆的前方空闲检查能看到先生成车辆本步已写入的占用
func (m *VehicleManager) Update() {
	for _, h := range m.order {
		v := m.mustGet(h)
		if v.retired {
			continue
		}
		m.update(v)
	}
	clear(m.pending[:])
	for _, h := range m.order {
		if v := m.mustGet(h); !v.retired && v.front < 0 {
			m.pending[v.origin]++
		}
	}
}

// update 推进单辆车一步
// 算法说明（按优先级互斥）：
// 1. 车尾已越过L+2：已完全进入驶出段，直接前进
// 2. 正在转弯：推进一个转弯阶段
// 3. 车头位于停车线前一格：信号灯非红、剩余时间足够且冲突区申请成功时前进，
// 非直行车辆进入转弯状态；否则原地等待
// 4. 其他：前方格子空闲时前进，否则原地等待
func (m *VehicleManager) update(v *Vehicle) {
	lanes := m.ctx.LaneManager()
	l := lanes.ApproachLength()
	switch {
	case v.back > l+2:
		v.moveStraight(l)
		m.place(v)
	case v.inTurn:
		m.advanceTurn(v)
	case v.front+1 == l:
		if m.checkLight(v) && m.checkMove(v) && m.ctx.Junction().Reserve(v.direction, v.turn, v.Extent()) {
			v.moveStraight(l)
			if v.turn != entity.Straight {
				v.inTurn = true
				v.turnPhase = 0
			}
		} else {
			m.hold(v)
		}
		m.place(v)
	default:
		if m.clearPath(v) {
			v.moveStraight(l)
		} else {
			m.hold(v)
		}
		m.place(v)
	}
	if v.back >= 2*l+1 {
		v.retired = true
		m.stats.Exited++
	}
}

func (m *VehicleManager) hold(v *Vehicle) {
	v.held++
	m.stats.Held++
}

// place 将车辆写入当前车道(back, front]
func (m *VehicleManager) place(v *Vehicle) {
	m.ctx.LaneManager().Get(v.direction).Place(v.handle, v.back, v.front)
}

// clearPath 当前车道车头前方一格本步是否空闲
func (m *VehicleManager) clearPath(v *Vehicle) bool {
	return m.ctx.LaneManager().Get(v.direction).IsFree(v.front + 1)
}

// checkLight 生成时进口道所属信号轴是否非红灯
func (m *VehicleManager) checkLight(v *Vehicle) bool {
	return !m.ctx.Junction().Signal(v.origin.Axis()).IsRed()
}

// checkMove 距红灯剩余时间是否足够完成通过路口
// 说明：右转需要严格多于extent-1步，直行与左转需要严格多于extent步
func (m *VehicleManager) checkMove(v *Vehicle) bool {
	need := v.Extent()
	if v.turn == entity.TurnRight {
		need--
	}
	return m.ctx.Junction().Signal(v.origin.Axis()).TimeToRed > need
}
