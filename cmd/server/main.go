package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/humidifier-sizer/internal/application"
	"github.com/eugenenazirov/humidifier-sizer/internal/batch"
	"github.com/eugenenazirov/humidifier-sizer/internal/calculator"
	"github.com/eugenenazirov/humidifier-sizer/internal/config"
	"github.com/eugenenazirov/humidifier-sizer/internal/logging"
	"github.com/eugenenazirov/humidifier-sizer/internal/storage"
	"github.com/eugenenazirov/humidifier-sizer/internal/validation"
)

var signalNotify = signal.Notify

type optionalFloat struct {
	value float64
	set   bool
}

func (o optionalFloat) ptr() *float64 {
	if !o.set {
		return nil
	}
	return &o.value
}

func main() {
	kingpinApp := kingpin.New("humidifier-sizer", "Humidifier sizing calculator - estimates humidifier output and tank volume for a room")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	serveCmd := kingpinApp.Command("serve", "Run the HTTP API").Default()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	var metricsSet bool
	metricsFlag := serveCmd.Flag("metrics", "Expose Prometheus metrics at /metrics").IsSetByUser(&metricsSet).Bool()

	calcCmd := kingpinApp.Command("calc", "Size a humidifier for a single room")
	area := calcCmd.Flag("area", "Floor area in m²").Required().Float64()
	targetHumidity := calcCmd.Flag("target-humidity", "Target relative humidity in %").Required().Float64()
	roomTemperature := calcCmd.Flag("room-temperature", "Room temperature in °C").Required().Float64()
	var hours, ceiling, ventilation, initial optionalFloat
	calcCmd.Flag("hours", "Continuous operation hours per tank").IsSetByUser(&hours.set).Float64Var(&hours.value)
	calcCmd.Flag("ceiling-height", "Ceiling height in m").IsSetByUser(&ceiling.set).Float64Var(&ceiling.value)
	calcCmd.Flag("ventilation-rate", "Air changes per hour").IsSetByUser(&ventilation.set).Float64Var(&ventilation.value)
	calcCmd.Flag("initial-humidity", "Current relative humidity in %").IsSetByUser(&initial.set).Float64Var(&initial.value)
	format := calcCmd.Flag("format", "Output format").Default("text").Enum("text", "yaml", "json")

	batchCmd := kingpinApp.Command("batch", "Size humidifiers for every room in a CSV file")
	inputFile := batchCmd.Flag("input", "Rooms CSV file").Required().ExistingFile()
	outputFile := batchCmd.Flag("output", "Results CSV file (default stdout)").String()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}
	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}
	if *port != "" {
		overrides.Port = port
	}
	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}
	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}
	if metricsSet {
		overrides.MetricsEnabled = metricsFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		kingpinApp.Fatalf("failed to load configuration: %v", err)
	}

	switch command {
	case calcCmd.FullCommand():
		req := calcRequest{
			Area:                     *area,
			TargetHumidity:           *targetHumidity,
			RoomTemperature:          *roomTemperature,
			ContinuousOperationHours: hours.ptr(),
			CeilingHeight:            ceiling.ptr(),
			VentilationRate:          ventilation.ptr(),
			InitialHumidity:          initial.ptr(),
		}
		if err := runCalc(os.Stdout, req, cfg.Defaults, *format); err != nil {
			kingpinApp.Fatalf("%v", err)
		}
	case batchCmd.FullCommand():
		summary, err := runBatch(*inputFile, *outputFile, cfg.Defaults)
		if err != nil {
			kingpinApp.Fatalf("%v", err)
		}
		fmt.Fprintf(os.Stderr, "sized %d rooms, %d failed\n", summary.Rows, summary.Failed)
	default:
		serve(cfg)
	}
}

func serve(cfg config.Config) {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// calcRequest carries the calc command flags. Nil optional fields take the
// configured defaults.
type calcRequest struct {
	Area                     float64
	TargetHumidity           float64
	RoomTemperature          float64
	ContinuousOperationHours *float64
	CeilingHeight            *float64
	VentilationRate          *float64
	InitialHumidity          *float64
}

func (r calcRequest) input(d storage.Defaults) calculator.Input {
	in := d.Apply(r.Area, r.TargetHumidity, r.RoomTemperature)
	if r.ContinuousOperationHours != nil {
		in.ContinuousOperationHours = *r.ContinuousOperationHours
	}
	if r.CeilingHeight != nil {
		in.CeilingHeight = *r.CeilingHeight
	}
	if r.VentilationRate != nil {
		in.VentilationRate = *r.VentilationRate
	}
	if r.InitialHumidity != nil {
		in.InitialHumidity = *r.InitialHumidity
	}
	return in
}

type calcOutput struct {
	RequiredHumidificationCapacity int     `json:"requiredHumidificationCapacity" yaml:"required_humidification_capacity_ml_per_hour"`
	RequiredTankCapacity           float64 `json:"requiredTankCapacity" yaml:"required_tank_capacity_l"`
	Dominant                       string  `json:"dominant" yaml:"dominant"`
}

func runCalc(w io.Writer, req calcRequest, defaults storage.Defaults, format string) error {
	in := req.input(defaults)
	if err := validation.Validate(in); err != nil {
		return err
	}

	b := calculator.New().Explain(in)
	out := calcOutput{
		RequiredHumidificationCapacity: b.Result.RequiredHumidificationCapacity,
		RequiredTankCapacity:           b.Result.RequiredTankCapacity,
		Dominant:                       string(b.Dominant),
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintf(w,
			"Required humidification capacity: %d mL/h\nRequired tank capacity: %.1f L\nDominant load: %s\n",
			out.RequiredHumidificationCapacity, out.RequiredTankCapacity, out.Dominant)
		return err
	}
}

func runBatch(inputPath, outputPath string, defaults storage.Defaults) (batch.Summary, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return batch.Summary{}, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return batch.Summary{}, fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	return batch.Run(in, out, calculator.New(), defaults)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
