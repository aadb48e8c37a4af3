// 随机数引擎，包装了golang.org/x/exp/rand，提供仿真所需的确定性随机数
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能，相同种子产生相同序列
// 说明：基于golang.org/x/exp/rand库，非线程安全，仿真主循环为单线程
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改配置的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Triple 连续生成三个[0.0, 1.0)的均匀分布随机数
// 功能：按顺序抽取三个独立样本，供车辆生成使用（是否生成、车型、转向）
// 返回：三个随机数，顺序与抽取顺序一致
func (e *Engine) Triple() (float64, float64, float64) {
	a := e.Float64()
	b := e.Float64()
	c := e.Float64()
	return a, b, c
}
