// 渲染模块，每步接收四条车道的占用与两个信号轴的灯色，输出到终端或WebSocket客户端
package render

import (
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// Frame 一步仿真的可视化数据
type Frame struct {
	Step  int32                                `json:"step" bson:"step"`
	Lanes [entity.DirectionCount][]entity.Cell `json:"lanes" bson:"lanes"` // 按方向下标（北、西、南、东）
	NS    entity.Signal                        `json:"ns" bson:"ns"`
	EW    entity.Signal                        `json:"ew" bson:"ew"`
}

// Sink 帧的消费者
type Sink interface {
	Draw(f *Frame) error
	Close() error
}

// lightName 灯色名称
func lightName(s mapv2.LightState) string {
	switch s {
	case mapv2.LightState_LIGHT_STATE_GREEN:
		return "green"
	case mapv2.LightState_LIGHT_STATE_YELLOW:
		return "yellow"
	case mapv2.LightState_LIGHT_STATE_RED:
		return "red"
	default:
		return "unknown"
	}
}
