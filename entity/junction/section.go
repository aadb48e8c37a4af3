package junction

import (
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// grant 一次通行申请对某个冲突区的占用
// 说明：写入的占用计数为 extent + offset
type grant struct {
	quadrant entity.Quadrant
	offset   int32
}

// reservations 冲突区占用表 [转向][进口道方向]
// 说明：左转比直行多占用对向冲突区一步，用于覆盖穿越对向直行车道的时间
var reservations = [3][entity.DirectionCount][]grant{
	entity.Straight: {
		entity.North: {{entity.NE, -1}, {entity.NW, 0}},
		entity.South: {{entity.SW, -1}, {entity.SE, 0}},
		entity.East:  {{entity.SE, -1}, {entity.NE, 0}},
		entity.West:  {{entity.NW, -1}, {entity.SW, 0}},
	},
	entity.TurnRight: {
		entity.North: {{entity.NE, 0}},
		entity.South: {{entity.SW, 0}},
		entity.East:  {{entity.SE, 0}},
		entity.West:  {{entity.NW, 0}},
	},
	entity.TurnLeft: {
		entity.North: {{entity.NE, 0}, {entity.SW, 1}},
		entity.South: {{entity.SW, 0}, {entity.NE, 1}},
		entity.East:  {{entity.SE, 0}, {entity.NW, 1}},
		entity.West:  {{entity.NW, 0}, {entity.SE, 1}},
	},
}

// sections 路口四个冲突区的占用计数
// 说明：正数表示仍被占用的剩余步数，0表示空闲
type sections [entity.QuadrantCount]int32

// reserve 申请冲突区
// 功能：所需冲突区全部空闲时写入占用计数
// 参数：d-进口道方向，turn-转向，extent-车长
// 返回：是否申请成功，失败时不修改任何计数
func (s *sections) reserve(d entity.Direction, turn entity.TurnIntent, extent int32) bool {
	grants := reservations[turn][d]
	for _, g := range grants {
		if s[g.quadrant] != 0 {
			return false
		}
	}
	for _, g := range grants {
		s[g.quadrant] = extent + g.offset
	}
	return true
}

// decay 所有计数减一，下限为0
func (s *sections) decay() {
	for i := range s {
		s[i] = max(s[i]-1, 0)
	}
}
