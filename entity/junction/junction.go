package junction

import (
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

// Junction 信号控制路口
// 功能：持有固定周期信号灯与冲突区占用表，为车辆提供灯色查询与通行申请
// 说明：灯色在准备阶段按步数计算，冲突区计数在更新阶段衰减
type Junction struct {
	mapv2connect.UnimplementedTrafficLightServiceHandler

	id           int32
	trafficLight *trafficlight.FixedTrafficLight // 信号灯模块

	step     int32
	signals  [2]entity.Signal // [AxisNS/AxisEW]
	sections sections
}

// New 创建路口
// 参数：id-路口ID，c-信号灯配时
// 返回：路口实例，配时非法时返回错误
func New(id int32, c config.Light) (*Junction, error) {
	tl, err := trafficlight.NewFixedTrafficLight(id, c.GreenNS, c.YellowNS, c.GreenEW, c.YellowEW)
	if err != nil {
		return nil, err
	}
	j := &Junction{
		id:           id,
		trafficLight: tl,
	}
	j.Prepare(0)
	return j, nil
}

// ID 路口ID
func (j *Junction) ID() int32 {
	return j.id
}

// Prepare 准备阶段，计算第step步两个信号轴的灯色
func (j *Junction) Prepare(step int32) {
	j.step = step
	ns, ew := j.trafficLight.At(step)
	j.signals[entity.AxisNS] = ns
	j.signals[entity.AxisEW] = ew
}

// Update 更新阶段，冲突区计数衰减
// 说明：所有车辆推进完成后调用，无论本步是否有新的占用
func (j *Junction) Update() {
	j.sections.decay()
}

// Signal 指定信号轴本步的灯色
func (j *Junction) Signal(axis entity.Axis) entity.Signal {
	return j.signals[axis]
}

// Reserve 申请通过路口所需的冲突区
// 功能：仅在停车线处调用，所需冲突区全部空闲时按占用表写入计数
// 参数：d-车辆生成时的进口道方向，turn-转向，extent-车长
// 返回：是否申请成功
func (j *Junction) Reserve(d entity.Direction, turn entity.TurnIntent, extent int32) bool {
	ok := j.sections.reserve(d, turn, extent)
	if ok {
		log.Tracef("step %d: %s %s vehicle (extent %d) reserved sections %v", j.step, d, turn, extent, j.sections)
	}
	return ok
}

// Section 冲突区当前计数
func (j *Junction) Section(q entity.Quadrant) int32 {
	return j.sections[q]
}
