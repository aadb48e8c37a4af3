package trafficlight

import (
	"fmt"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

const (
	red    = mapv2.LightState_LIGHT_STATE_RED
	yellow = mapv2.LightState_LIGHT_STATE_YELLOW
	green  = mapv2.LightState_LIGHT_STATE_GREEN
)

// FixedTrafficLight 固定周期信号灯控制器
// 功能：按照南北绿、南北黄、东西绿、东西黄的固定顺序循环
// 说明：无内部状态，灯色完全由步数决定
type FixedTrafficLight struct {
	JunctionID int32 // 所属junction ID

	greenNS, yellowNS, greenEW, yellowEW int32
	cycle                                int32

	program *mapv2.TrafficLight // 以相位程序形式表达的固定周期
}

// NewFixedTrafficLight 创建固定周期信号灯控制器
// 功能：校验四个相位时长并生成对应的相位程序
// 参数：junctionID-路口ID，greenNS/yellowNS/greenEW/yellowEW-各相位时长（步）
// 返回：信号灯控制器，任一时长不为正时返回错误
func NewFixedTrafficLight(junctionID, greenNS, yellowNS, greenEW, yellowEW int32) (*FixedTrafficLight, error) {
	for _, d := range []int32{greenNS, yellowNS, greenEW, yellowEW} {
		if d <= 0 {
			return nil, fmt.Errorf("phase durations must be positive, got %d/%d/%d/%d",
				greenNS, yellowNS, greenEW, yellowEW)
		}
	}
	l := &FixedTrafficLight{
		JunctionID: junctionID,
		greenNS:    greenNS,
		yellowNS:   yellowNS,
		greenEW:    greenEW,
		yellowEW:   yellowEW,
		cycle:      greenNS + yellowNS + greenEW + yellowEW,
	}
	l.program = l.buildProgram()
	return l, nil
}

// buildProgram 生成相位程序
// 说明：每个相位的States按车道顺序（北、西、南、东）排列
func (l *FixedTrafficLight) buildProgram() *mapv2.TrafficLight {
	states := func(ns, ew mapv2.LightState) []mapv2.LightState {
		return lo.Map(entity.Directions[:], func(d entity.Direction, _ int) mapv2.LightState {
			if d.Axis() == entity.AxisNS {
				return ns
			}
			return ew
		})
	}
	return &mapv2.TrafficLight{
		JunctionId: l.JunctionID,
		Phases: []*mapv2.Phase{
			{Duration: float64(l.greenNS), States: states(green, red)},
			{Duration: float64(l.yellowNS), States: states(yellow, red)},
			{Duration: float64(l.greenEW), States: states(red, green)},
			{Duration: float64(l.yellowEW), States: states(red, yellow)},
		},
	}
}

// Cycle 信号周期长度
func (l *FixedTrafficLight) Cycle() int32 {
	return l.cycle
}

// Program 相位程序，调用方不得修改
func (l *FixedTrafficLight) Program() *mapv2.TrafficLight {
	return l.program
}

func (l *FixedTrafficLight) offset(t int32) int32 {
	return ((t % l.cycle) + l.cycle) % l.cycle
}

// At 计算第t步两个信号轴的灯色与距红灯剩余步数
// 参数：t-步数
// 返回：南北向信号，东西向信号
// 算法说明：
// 1. m = t mod C
// 2. 南北向：m < gNS为绿，剩余yNS+gNS-m；m < gNS+yNS为黄，剩余gNS+yNS-m；否则为红，剩余0
// 3. 东西向：m < gNS+yNS为红，剩余0；m < gNS+yNS+gEW为绿，否则为黄，剩余均为C-m
func (l *FixedTrafficLight) At(t int32) (ns, ew entity.Signal) {
	m := l.offset(t)
	nsEnd := l.greenNS + l.yellowNS
	switch {
	case m < l.greenNS:
		ns = entity.Signal{State: green, TimeToRed: nsEnd - m}
	case m < nsEnd:
		ns = entity.Signal{State: yellow, TimeToRed: nsEnd - m}
	default:
		ns = entity.Signal{State: red}
	}
	switch {
	case m < nsEnd:
		ew = entity.Signal{State: red}
	case m < nsEnd+l.greenEW:
		ew = entity.Signal{State: green, TimeToRed: l.cycle - m}
	default:
		ew = entity.Signal{State: yellow, TimeToRed: l.cycle - m}
	}
	return
}

// PhaseAt 第t步所处的相位下标与相位剩余时长
func (l *FixedTrafficLight) PhaseAt(t int32) (int32, float64) {
	m := l.offset(t)
	var end int32
	for i, p := range l.program.Phases {
		end += int32(p.Duration)
		if m < end {
			return int32(i), float64(end - m)
		}
	}
	log.Panicf("offset %d out of cycle %d", m, l.cycle)
	return 0, 0
}
