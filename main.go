package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"git.fiblab.net/sim/syncer/v3"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-sim/output"
	"github.com/tsinghua-fib-lab/intersection-sim/render"
	"github.com/tsinghua-fib-lab/intersection-sim/task"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

var (
	// 分布式模式syncer地址，如果设置为空则激活独立部署模式
	syncerAddr = flag.String("syncer", "", "syncer address (empty means standalone mode), e.g. http://localhost:53001")
	// 模拟任务名，用于RPC服务注册与输出的集合名，为空时随机生成
	job = flag.String("job", "", "the name of the whole simulation task (empty means a random uuid)")
	// 本程序监听的RPC地址，设置为空则不启动sidecar
	grpcAddr = flag.String("listen", "", "RPC listening address (empty means no sidecar), e.g. :51102")

	// 画面输出
	renderMode        = flag.String("render", "console", "frame rendering (console or none)")
	renderInteractive = flag.Bool("render.interactive", false, "wait for Enter after each console frame")
	renderWs          = flag.String("render.ws", "", "websocket listening address for live frames (empty means disabled), e.g. :8080")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "main")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <config> <seed>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Fatalf("log.level must be one of %v", logLevels)
	}

	// 获取配置与种子
	c, err := config.Load(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	seed, err := strconv.ParseUint(flag.Arg(1), 10, 64)
	if err != nil {
		log.Fatalf("seed must be a non-negative integer: %v", err)
	}
	if *job == "" {
		*job = uuid.NewString()
	}
	log.Infof("%+v", c)

	// 画面输出
	sinks := make([]render.Sink, 0)
	switch *renderMode {
	case "console":
		var in io.Reader
		if *renderInteractive {
			in = os.Stdin
		}
		sinks = append(sinks, render.NewConsole(os.Stdout, in, c.Control.ApproachLength))
	case "none":
	default:
		log.Fatalf("render must be console or none, got %q", *renderMode)
	}
	if *renderWs != "" {
		hub := render.NewHub()
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		go func() {
			if err := http.ListenAndServe(*renderWs, mux); err != nil {
				log.Errorf("websocket server: %v", err)
			}
		}()
		log.Infof("serve live frames at ws://%s/ws", *renderWs)
		sinks = append(sinks, hub)
	}
	if c.Output != nil && c.Output.URI != "" {
		s, err := output.NewMongoSink(*c.Output, *job)
		if err != nil {
			log.Fatalf("output: %v", err)
		}
		sinks = append(sinks, s)
	}

	var sidecar *syncer.Sidecar
	if *grpcAddr != "" {
		sidecar = syncer.NewSidecar(task.SelfName, *grpcAddr, *syncerAddr)
	}
	t, err := task.NewContext(*job, c, seed, sidecar, sidecar != nil, sinks...)
	if err != nil {
		log.Fatal(err)
	}
	t.Run()
}
