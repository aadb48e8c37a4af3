package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var log = logrus.WithField("module", "config")

const (
	// 最大的并线格为L+4，必须落在长度为2L+2的车道内
	minApproachLength = 3
	proportionEpsilon = 1e-6
)

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息
// 说明：将配置文件与命令行给出的随机种子合并为运行时可用的配置对象
type RuntimeConfig struct {
	All  Config  // 全部配置
	C    Control // 全局控制配置
	Seed uint64  // 随机数种子
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 参数：config-原始配置对象，seed-随机数种子
// 返回：初始化的运行时配置指针
func NewRuntimeConfig(config Config, seed uint64) *RuntimeConfig {
	return &RuntimeConfig{
		All:  config,
		C:    config.Control,
		Seed: seed,
	}
}

// Load 读取并校验配置文件
// 功能：按扩展名选择格式（.yaml/.yml为YAML，其余为旧版key/value格式），解析后校验
// 参数：path-配置文件路径
// 返回：配置对象，错误信息
func Load(path string) (Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config file load err: %w", err)
	}
	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(file, &c); err != nil {
			return Config{}, fmt.Errorf("config file load err: %w", err)
		}
	default:
		if c, err = ParseLegacy(bytes.NewReader(file)); err != nil {
			return Config{}, fmt.Errorf("config file load err: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// Validate 校验配置取值范围
// 功能：在仿真开始前拒绝所有会导致未定义行为的配置
// 返回：所有校验错误的合并，全部合法时返回nil
func (c Config) Validate() error {
	var errs []error
	if c.Control.Step.Total <= 0 {
		errs = append(errs, fmt.Errorf("maximum simulated time must be positive, got %d", c.Control.Step.Total))
	}
	if c.Control.Step.Start < 0 {
		errs = append(errs, fmt.Errorf("start step must not be negative, got %d", c.Control.Step.Start))
	}
	if c.Control.ApproachLength < minApproachLength {
		errs = append(errs, fmt.Errorf("approach length must be at least %d, got %d", minApproachLength, c.Control.ApproachLength))
	}
	for name, d := range map[string]int32{
		"green north-south":  c.Light.GreenNS,
		"yellow north-south": c.Light.YellowNS,
		"green east-west":    c.Light.GreenEW,
		"yellow east-west":   c.Light.YellowEW,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s duration must be positive, got %d", name, d))
		}
	}
	p := c.Spawn.Probability
	for name, v := range map[string]float64{
		"northbound probability": p.Northbound,
		"southbound probability": p.Southbound,
		"eastbound probability":  p.Eastbound,
		"westbound probability":  p.Westbound,
		"proportion of cars":     c.Spawn.Proportion.Cars,
		"proportion of SUVs":     c.Spawn.Proportion.SUVs,
		"proportion of trucks":   c.Spawn.Proportion.Trucks,
	} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			errs = append(errs, fmt.Errorf("%s must be in [0, 1], got %v", name, v))
		}
	}
	prop := c.Spawn.Proportion
	if prop.Cars+prop.SUVs > 1+proportionEpsilon {
		errs = append(errs, fmt.Errorf("proportion of cars and SUVs exceeds 1: %v", prop.Cars+prop.SUVs))
	}
	if prop.Trucks != 0 && math.Abs(prop.Cars+prop.SUVs+prop.Trucks-1) > proportionEpsilon {
		errs = append(errs, fmt.Errorf("vehicle class proportions must sum to 1, got %v", prop.Cars+prop.SUVs+prop.Trucks))
	}
	for name, t := range map[string]TurnProportion{
		"car":   c.Spawn.Turn.Car,
		"SUV":   c.Spawn.Turn.SUV,
		"truck": c.Spawn.Turn.Truck,
	} {
		if t.Right < 0 || t.Left < 0 || t.Right+t.Left > 1+proportionEpsilon {
			errs = append(errs, fmt.Errorf("%s turn proportions (right %v, left %v) must be non-negative and sum to at most 1", name, t.Right, t.Left))
		}
	}
	if c.Output != nil && c.Output.URI != "" && c.Output.DB == "" {
		errs = append(errs, errors.New("output db must be set when output uri is given"))
	}
	return errors.Join(errs...)
}
