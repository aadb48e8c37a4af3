package clock

import (
	"fmt"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

// Clock 仿真时钟管理器
// 功能：管理仿真系统的离散时间推进，每步对应一个单位的仿真时间
// 说明：维护当前步数与仿真时间，提供RPC服务
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	START_STEP int32 // 起始步
	END_STEP   int32 // 结束步，模拟区间[START, END)

	T            float64 // 当前时间
	InternalStep int32   // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置时钟到起始步
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep)
}

// Tick 推进一步
func (c *Clock) Tick() {
	c.InternalStep++
	c.T = float64(c.InternalStep)
}

// Done 是否已到达结束步
func (c *Clock) Done() bool {
	return c.InternalStep >= c.END_STEP
}

// Remaining 剩余步数
func (c *Clock) Remaining() int32 {
	return max(c.END_STEP-c.InternalStep, 0)
}

func (c *Clock) String() string {
	return fmt.Sprintf("step %d/%d", c.InternalStep, c.END_STEP)
}
