// Command demo drives the Idle/Walk creature machine from a fixed-rate
// polling loop until interrupted.
//
// Settings are read from demo.yaml in the working directory (or the path in
// DEMO_CONFIG), all optional:
//
//	tick_interval: 500ms
//	stamina_threshold: 10
//	chart: creature.yaml   # build the machine from a chart file instead
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	fsm "github.com/evan-bertis-sample/go-fsm"
	"github.com/evan-bertis-sample/go-fsm/chart"
)

func main() {
	v := viper.New()
	v.SetDefault("tick_interval", 500*time.Millisecond)
	v.SetDefault("stamina_threshold", 10)
	v.SetDefault("chart", "")

	cfgPath := os.Getenv("DEMO_CONFIG")
	if cfgPath == "" {
		cfgPath = "demo.yaml"
	}
	v.SetConfigFile(cfgPath)
	// A missing config file is fine, the defaults apply.
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "read config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	threshold := v.GetInt("stamina_threshold")
	ctx := fsm.NewContext()

	var m *fsm.Machine
	if chartPath := v.GetString("chart"); chartPath != "" {
		m, err = buildFromChart(chartPath, ctx, threshold, logger)
	} else {
		m, err = buildInCode(ctx, threshold, logger)
	}
	if err != nil {
		logger.Fatal("build machine", zap.Error(err))
	}

	logger.Info("machine ready",
		zap.Int("states", m.StateCount()),
		zap.Int("transitions", m.TransitionCount()),
		zap.Int("stamina_threshold", threshold))

	ticker := time.NewTicker(v.GetDuration("tick_interval"))
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			if err := m.Run(); err != nil {
				logger.Fatal("tick", zap.Error(err))
			}
			logger.Info("tick",
				zap.String("state", m.CurrentState()),
				zap.Int("stamina", ctx.GetInt("stamina")))
		case <-sig:
			m.Stop()
			logger.Info("stopped", zap.String("state", m.CurrentState()))
			return
		}
	}
}

// buildInCode wires the creature machine directly against the fluent builder.
func buildInCode(ctx *fsm.Context, threshold int, logger *zap.Logger) (*fsm.Machine, error) {
	b := fsm.NewBuilder(ctx)
	b.State("Idle").
		OnEnter(announce(logger, "idle")).
		OnUpdate(adjustStamina(+1))
	b.State("Walk").
		OnEnter(announce(logger, "walk")).
		OnUpdate(adjustStamina(-1))
	b.Transition("Idle", "Walk", staminaAtLeast(threshold)).
		Transition("Walk", "Idle", staminaEmpty).
		Initial("Idle")
	return b.Build(fsm.WithLogger(logger))
}

// buildFromChart loads the machine shape from a chart file and binds the same
// hooks by name.
func buildFromChart(path string, ctx *fsm.Context, threshold int, logger *zap.Logger) (*fsm.Machine, error) {
	c, err := chart.Load(path)
	if err != nil {
		return nil, err
	}
	reg := chart.NewRegistry().
		Hook("idle.enter", announce(logger, "idle")).
		Hook("idle.update", adjustStamina(+1)).
		Hook("walk.enter", announce(logger, "walk")).
		Hook("walk.update", adjustStamina(-1)).
		Predicate("stamina.full", staminaAtLeast(threshold)).
		Predicate("stamina.empty", staminaEmpty)
	return c.Build(ctx, reg, fsm.WithLogger(logger))
}

func announce(logger *zap.Logger, name string) fsm.Hook {
	return func(m *fsm.Machine, ctx any) {
		logger.Info("entered state", zap.String("state", name))
	}
}

func adjustStamina(delta int) fsm.Hook {
	return func(m *fsm.Machine, ctx any) {
		c := ctx.(*fsm.Context)
		c.Set("stamina", c.GetInt("stamina")+delta)
	}
}

func staminaAtLeast(threshold int) fsm.Predicate {
	return func(m *fsm.Machine, ctx any) bool {
		return ctx.(*fsm.Context).GetInt("stamina") >= threshold
	}
}

func staminaEmpty(m *fsm.Machine, ctx any) bool {
	return ctx.(*fsm.Context).GetInt("stamina") == 0
}
