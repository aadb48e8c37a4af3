package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

var classChar = map[entity.VehicleClass]byte{
	entity.Car:   'c',
	entity.SUV:   's',
	entity.Truck: 't',
}

// Console 终端渲染器
// 功能：每步将四条车道输出为一行字符，空格为'.'，车辆按车型输出c/s/t，停车线前插入'|'
// 说明：交互模式下每帧输出后等待一次回车
type Console struct {
	w              io.Writer
	in             *bufio.Reader // 为nil时不等待输入
	approachLength int32
}

// NewConsole 创建终端渲染器
// 参数：w-输出，in-交互输入（可为nil），approachLength-路口前的格子数L
func NewConsole(w io.Writer, in io.Reader, approachLength int32) *Console {
	c := &Console{w: w, approachLength: approachLength}
	if in != nil {
		c.in = bufio.NewReader(in)
	}
	return c
}

// Draw 输出一帧
func (c *Console) Draw(f *Frame) error {
	var b strings.Builder
	fmt.Fprintf(&b, "step %d  NS=%s(%d) EW=%s(%d)\n",
		f.Step, lightName(f.NS.State), f.NS.TimeToRed, lightName(f.EW.State), f.EW.TimeToRed)
	for _, d := range entity.Directions {
		fmt.Fprintf(&b, "%-6s ", d)
		for i, cell := range f.Lanes[d] {
			if int32(i) == c.approachLength {
				b.WriteByte('|')
			}
			if !cell.Occupied {
				b.WriteByte('.')
			} else {
				b.WriteByte(classChar[cell.Class])
			}
		}
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(c.w, b.String()); err != nil {
		return fmt.Errorf("write frame %d: %w", f.Step, err)
	}
	if c.in != nil {
		if _, err := c.in.ReadString('\n'); err != nil && err != io.EOF {
			return fmt.Errorf("wait for input: %w", err)
		}
	}
	return nil
}

// Close 无需释放资源
func (c *Console) Close() error {
	return nil
}
