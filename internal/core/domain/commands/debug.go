package commands

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"sparkbot/internal/core/domain/command"
)

const kb = 1024
const debugTemplate = `allocated mem: %d KB
goroutines running: %d
heap: %d KB
stack: %d KB
commands: %d
compiled with %s for %s-%s`
const metricCount = 3

// NewDebug reports runtime statistics of the bot process.
func NewDebug(registry *command.Registry) command.Handler {
	return command.Handler{
		Name: "debug",
		Help: "Shows memory and runtime statistics of the bot.",
		Run: func(_ context.Context, _ command.Params) (command.Reply, error) {
			data := make([]metrics.Sample, metricCount)
			data[0] = metrics.Sample{Name: "/memory/classes/heap/objects:bytes"}
			data[1] = metrics.Sample{Name: "/memory/classes/heap/stacks:bytes"}
			data[2] = metrics.Sample{Name: "/memory/classes/total:bytes"}

			metrics.Read(data)

			goos, goarch := runtime.GOOS, runtime.GOARCH
			if info, ok := debug.ReadBuildInfo(); ok {
				for _, setting := range info.Settings {
					switch setting.Key {
					case "GOOS":
						goos = setting.Value
					case "GOARCH":
						goarch = setting.Value
					}
				}
			}

			return command.Single(fmt.Sprintf(
				debugTemplate,
				data[2].Value.Uint64()/kb,
				runtime.NumGoroutine(),
				data[0].Value.Uint64()/kb,
				data[1].Value.Uint64()/kb,
				len(registry.ListCommands()),
				runtime.Version(), goos, goarch,
			)), nil
		},
	}
}
