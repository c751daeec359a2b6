// Command roverctl is the onboard control runtime for the differential-
// drive rover: it owns the closed-loop motor controller, the PCA9685/H-
// bridge motor bridge, the Arduino co-processor and LIDAR serial links,
// and the TCP and WebSocket operator interfaces that front them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/edgeflow/roverctl/internal/arduino"
	"github.com/edgeflow/roverctl/internal/config"
	"github.com/edgeflow/roverctl/internal/events"
	"github.com/edgeflow/roverctl/internal/hal"
	"github.com/edgeflow/roverctl/internal/lidar"
	"github.com/edgeflow/roverctl/internal/logger"
	"github.com/edgeflow/roverctl/internal/motor"
	"github.com/edgeflow/roverctl/internal/mqtt"
	"github.com/edgeflow/roverctl/internal/sensors"
	"github.com/edgeflow/roverctl/internal/server"
	"github.com/edgeflow/roverctl/internal/telemetry"
)

var Version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to config.yaml (searches ./configs, ., ~/.roverctl if empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "roverctl: config load failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		LogDir:     cfg.Logger.LogDir,
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 7,
		Compress:   true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "roverctl: logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("roverctl starting", zap.String("version", Version))

	bus := events.NewBus()
	logger.SetEventSink(bus)

	boardHAL := initHAL(cfg, log)
	hal.SetGlobal(boardHAL)
	defer boardHAL.Close()

	motor.SetWatchdogTimeout(time.Duration(cfg.Motor.WatchdogTimeoutMs) * time.Millisecond)

	pwmDriver := buildPWMDriver(boardHAL, cfg, log)

	wiring := motor.Wiring{
		LeftIN1: cfg.Wiring.LeftIN1, LeftIN2: cfg.Wiring.LeftIN2,
		RightIN3: cfg.Wiring.RightIN3, RightIN4: cfg.Wiring.RightIN4,
		LeftChannel:  cfg.Wiring.LeftChannel,
		RightChannel: cfg.Wiring.RightChannel,
	}
	bridge, err := motor.NewBridge(boardHAL.GPIO(), pwmDriver, wiring, logger.WithComponent("bridge"))
	if err != nil {
		log.Fatal("bridge init failed", zap.Error(err))
	}

	controller := motor.NewController(bridge, bus, logger.WithComponent("motor"))
	defer controller.Close()

	heartbeat, err := motor.NewHeartbeatScheduler(controller, cfg.Motor.HeartbeatPeriod)
	if err != nil {
		log.Fatal("heartbeat scheduler init failed", zap.Error(err))
	}
	heartbeat.Start()
	defer heartbeat.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	arduinoLink := buildArduinoLink(boardHAL, controller, bus, cfg, log, ctx)
	buildLidarPoller(boardHAL, bus, cfg, log, ctx)

	go sensors.IMU(bus, 2*time.Second).Run(ctx)
	go sensors.Compass(bus, 2*time.Second).Run(ctx)
	go sensors.IR(bus, 500*time.Millisecond).Run(ctx)

	router := server.NewRouter(controller, arduinoLink)

	tcpServer := server.NewTCPServer(cfg.Server.TCPAddr, router, logger.WithComponent("tcp"))
	bus.Register(tcpServer)
	go func() {
		if err := tcpServer.Serve(); err != nil {
			log.Error("tcp server stopped", zap.Error(err))
		}
	}()

	hub := server.NewHub(router, logger.WithComponent("websocket"))
	bus.Register(hub)
	go hub.Run()

	registerTelemetrySinks(bus, cfg, log)

	app := buildFiberApp(hub)
	go func() {
		if err := app.Listen(cfg.Server.WSAddr); err != nil {
			log.Error("websocket server stopped", zap.Error(err))
		}
	}()

	log.Info("roverctl ready",
		zap.String("tcp_addr", cfg.Server.TCPAddr),
		zap.String("ws_addr", cfg.Server.WSAddr),
		zap.Bool("hardware_present", boardHAL.Present()),
	)

	waitForShutdown(log)

	_ = app.Shutdown()
}

func buildPWMDriver(h hal.HAL, cfg *config.Config, log *zap.Logger) motor.PWMDriver {
	if !h.Present() {
		return motor.NewNoPWM(logger.WithComponent("pwm"))
	}

	pwm, err := motor.NewPCA9685(h.I2C(), byte(cfg.Wiring.PWMAddr), logger.WithComponent("pwm"))
	if err != nil {
		log.Warn("pca9685 init failed, using no-op pwm", zap.Error(err))
		return motor.NewNoPWM(logger.WithComponent("pwm"))
	}
	if err := pwm.SetFrequency(float64(cfg.Wiring.PWMFrequency)); err != nil {
		log.Warn("pca9685 set frequency failed", zap.Error(err))
	}
	return pwm
}

func buildArduinoLink(h hal.HAL, controller *motor.Controller, bus events.Sink, cfg *config.Config, log *zap.Logger, ctx context.Context) *arduino.Link {
	serialProvider := openDedicatedSerial(h, cfg.Serial.ArduinoPort, cfg.Serial.ArduinoBaud, log)

	link := arduino.New(serialProvider, bus, controller, logger.WithComponent("arduino"))
	go func() {
		if err := link.Run(ctx); err != nil {
			log.Warn("arduino link stopped", zap.Error(err))
		}
	}()
	return link
}

func buildLidarPoller(h hal.HAL, bus events.Sink, cfg *config.Config, log *zap.Logger, ctx context.Context) {
	serialProvider := openDedicatedSerial(h, cfg.Serial.LidarPort, cfg.Serial.LidarBaud, log)

	poller := lidar.New(serialProvider, bus, 200*time.Millisecond, logger.WithComponent("lidar"))
	go poller.Run(ctx)
}

// openDedicatedSerial opens an independent serial port for one collaborator
// (Arduino or LIDAR each need their own, unlike GPIO/I2C which share a
// single bus). Falls back to the shared HAL serial provider — a no-op on
// NullHAL, a last resort on BoardHAL — if the dedicated open fails.
func openDedicatedSerial(h hal.HAL, port string, baud int, log *zap.Logger) hal.SerialProvider {
	if !h.Present() {
		return h.Serial()
	}
	s := hal.NewBugstSerial()
	if err := s.Open(port, baud); err != nil {
		log.Warn("serial open failed, falling back to shared provider", zap.String("port", port), zap.Error(err))
		return h.Serial()
	}
	return s
}

func registerTelemetrySinks(bus *events.Bus, cfg *config.Config, log *zap.Logger) {
	if cfg.Telemetry.MQTTBrokerURL != "" {
		mqttCfg := mqtt.DefaultConfig()
		mqttCfg.BrokerURL = cfg.Telemetry.MQTTBrokerURL
		sink, err := mqtt.New(mqttCfg, logger.WithComponent("mqtt"))
		if err != nil {
			log.Warn("mqtt sink disabled", zap.Error(err))
		} else {
			bus.Register(sink)
		}
	}

	if cfg.Telemetry.InfluxURL != "" {
		sink, err := telemetry.NewInflux(telemetry.InfluxConfig{
			URL:    cfg.Telemetry.InfluxURL,
			Token:  cfg.Telemetry.InfluxToken,
			Org:    cfg.Telemetry.InfluxOrg,
			Bucket: cfg.Telemetry.InfluxBucket,
		}, logger.WithComponent("influx"))
		if err != nil {
			log.Warn("influx sink disabled", zap.Error(err))
		} else {
			bus.Register(sink)
		}
	}

	if cfg.Telemetry.RedisAddr != "" {
		sink, err := telemetry.NewRedis(telemetry.RedisConfig{
			Addr:    cfg.Telemetry.RedisAddr,
			Channel: cfg.Telemetry.RedisChannel,
		}, logger.WithComponent("redis"))
		if err != nil {
			log.Warn("redis sink disabled", zap.Error(err))
		} else {
			bus.Register(sink)
		}
	}
}

func buildFiberApp(hub *server.Hub) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "roverctl v" + Version,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "running", "version": Version})
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", hub.HandlerFunc())

	return app
}

func waitForShutdown(log *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))
}
