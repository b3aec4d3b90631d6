// renderer traces a scene file and writes the image to disk, GCS, or S3.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image/png"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	runtimepprof "runtime/pprof"
	"syscall"
	"time"

	"whitted/color"
	"whitted/healthz"
	"whitted/imagestore"
	"whitted/rasterimage"
	"whitted/render"
	"whitted/rendermetrics"
	"whitted/scene"
	"whitted/scenefile"

	"cloud.google.com/go/storage"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	sceneFile    = flag.String("scene", "", "YAML or JSON scene file to render.")
	builtinScene = flag.String("builtin", "all-effects", "Built-in scene to render when -scene is not set.")
	listBuiltins = flag.Bool("list-builtins", false, "Print the built-in scene names and exit.")

	imageWidth  = flag.Int("width", 0, "Output image columns.  Zero uses the scene file's view.")
	imageHeight = flag.Int("height", 0, "Output image rows.  Zero uses the scene file's view.")
	supersample = flag.Int("supersample", 1, "Cast an n by n grid of rays per pixel.")
	workers     = flag.Int("workers", runtime.NumCPU(), "Rows rendered concurrently.")
	maxDepth    = flag.Int("max-depth", 0, "Maximum recursion depth.  Zero uses the tracer default.")
	minContrib  = flag.Float64("min-contribution", 0, "Stop recursing below this contribution.  Zero uses the tracer default.")
	accelerator = flag.String("accelerator", "", "Override the scene's accelerator: bvh, flat, or exhaustive.")
	gridEvery   = flag.Int("grid", 0, "If positive, overlay a white grid line every n pixels.")

	output        = flag.String("output", "output.png", "Where to write the image: a path, gs://bucket/key, or s3://bucket/key.  Keys ending in .png get a PNG, anything else a raw raster.")
	thumbnailSize = flag.Uint("thumbnail-size", 0, "If positive, also write a PNG thumbnail that fits in an n by n box.")
	s3Endpoint    = flag.String("s3-endpoint", "", "Override the S3 endpoint, for S3-compatible stores.")
	s3Region      = flag.String("s3-region", "us-east-1", "S3 region.")

	debugListen          = flag.String("debug-listen", "", "Server address:port for debug endpoint.  Empty disables it.")
	cpuProfile           = flag.String("cpu-profile", "", "Write a CPU profile to `file`.")
	monitoring           = flag.Bool("monitoring", false, "Export traces and metrics to Google Cloud?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 1, "What ratio of traces should be exported?")
)

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")

	if *listBuiltins {
		for _, name := range scenefile.BuiltinNames() {
			fmt.Println(name)
		}
		return
	}

	glog.Infof("flags:")
	glog.Infof("scene: %q", *sceneFile)
	glog.Infof("builtin: %q", *builtinScene)
	glog.Infof("width: %d", *imageWidth)
	glog.Infof("height: %d", *imageHeight)
	glog.Infof("supersample: %d", *supersample)
	glog.Infof("workers: %d", *workers)
	glog.Infof("max-depth: %d", *maxDepth)
	glog.Infof("min-contribution: %v", *minContrib)
	glog.Infof("accelerator: %q", *accelerator)
	glog.Infof("output: %q", *output)
	glog.Infof("thumbnail-size: %d", *thumbnailSize)
	glog.Infof("debug-listen: %q", *debugListen)
	glog.Infof("monitoring: %v", *monitoring)

	if err := run(); err != nil {
		glog.Errorf("Error: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

// run owns everything that needs flushing before exit.
func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signalCh := make(chan os.Signal, 1)
		signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
		<-signalCh
		glog.Infof("Caught signal, cancelling render")
		cancel()
	}()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return fmt.Errorf("while creating CPU profile: %w", err)
		}
		defer f.Close()
		if err := runtimepprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("while starting CPU profile: %w", err)
		}
		defer runtimepprof.StopCPUProfile()
	}

	recorder := rendermetrics.New()
	if *monitoring {
		traceOpts := []cloudtrace.Option{}
		if *monitoringProject != "" {
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		}
		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
		if err != nil {
			return fmt.Errorf("while installing Cloud Trace OpenTelemetry trace pipeline: %w", err)
		}
		defer traceShutdown()

		if err := recorder.RegisterMetrics(); err != nil {
			return fmt.Errorf("while registering render metrics: %w", err)
		}
		defer recorder.UnregisterMetrics()

		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         *monitoringProject,
			MetricPrefix:      "whitted",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("while creating Stackdriver metrics exporter: %w", err)
		}
		if err := exporter.StartMetricsExporter(); err != nil {
			return fmt.Errorf("while starting Stackdriver metrics exporter: %w", err)
		}
		defer exporter.Flush()
		defer exporter.StopMetricsExporter()
	}

	return do(ctx, recorder)
}

func do(ctx context.Context, recorder *rendermetrics.Recorder) error {
	s, view, err := loadScene()
	if err != nil {
		return err
	}
	if *accelerator != "" {
		a, err := scene.ParseAccelerator(*accelerator)
		if err != nil {
			return err
		}
		s.Accelerator = a
	}

	width, height := view.ImageWidth, view.ImageHeight
	if *imageWidth > 0 {
		width = *imageWidth
	}
	if *imageHeight > 0 {
		height = *imageHeight
	}

	dest, err := imagestore.Parse(*output)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, dest)
	if err != nil {
		return err
	}

	stats := s.TreeStats()
	glog.Infof("Scene %q: %d geometries, %d lights, BVH %d nodes, %d leaves, depth %d, largest leaf %d",
		s.Name, len(s.Geometries), len(s.Lights), stats.Nodes, stats.Leaves, stats.MaxDepth, stats.MaxLeafSize)

	progress := &healthz.Progress{}
	if *debugListen != "" {
		startDebugServer(progress)
	}

	raster := rasterimage.New(height, width)
	start := time.Now()
	summary, err := render.Render(ctx, s, raster, render.Options{
		Width:           width,
		Height:          height,
		ViewWidth:       view.Width,
		ViewHeight:      view.Height,
		Supersample:     *supersample,
		Workers:         *workers,
		MaxDepth:        *maxDepth,
		MinContribution: *minContrib,
		Progress:        progress.Update,
		Metrics:         recorder,
	})
	if err != nil {
		return fmt.Errorf("while rendering scene %q: %w", s.Name, err)
	}
	glog.Infof("Rendered %dx%d in %v: %d rays, %d shadow rays, max depth %d",
		width, height, time.Since(start), summary.Rays, summary.ShadowRays, summary.MaxDepth)

	if *gridEvery > 0 {
		raster.Grid(*gridEvery, color.New(1, 1, 1))
	}

	buf := &bytes.Buffer{}
	if imagestore.IsPNG(dest.Key) {
		err = raster.WritePNG(buf)
	} else {
		err = rasterimage.WriteRaster(raster, buf)
	}
	if err != nil {
		return fmt.Errorf("while encoding image: %w", err)
	}
	if err := store.Put(ctx, dest.Key, buf.Bytes()); err != nil {
		return fmt.Errorf("while storing %v: %w", dest, err)
	}

	if *thumbnailSize > 0 {
		thumb := &bytes.Buffer{}
		if err := png.Encode(thumb, raster.Thumbnail(*thumbnailSize, *thumbnailSize)); err != nil {
			return fmt.Errorf("while encoding thumbnail: %w", err)
		}
		thumbDest := dest.WithKey(imagestore.ThumbnailKey(dest.Key))
		if err := store.Put(ctx, thumbDest.Key, thumb.Bytes()); err != nil {
			return fmt.Errorf("while storing %v: %w", thumbDest, err)
		}
	}

	return nil
}

func loadScene() (*scene.Scene, scenefile.View, error) {
	if *sceneFile != "" {
		return scenefile.Load(*sceneFile)
	}
	return scenefile.Builtin(*builtinScene)
}

func openStore(ctx context.Context, dest imagestore.Location) (imagestore.Store, error) {
	switch dest.Scheme {
	case imagestore.GCS:
		gcs, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("while creating GCS client: %w", err)
		}
		return imagestore.NewGCSStore(gcs, dest.Bucket), nil

	case imagestore.S3:
		cfg := &aws.Config{
			Region: aws.String(*s3Region),
		}
		if *s3Endpoint != "" {
			cfg.Endpoint = aws.String(*s3Endpoint)
			cfg.S3ForcePathStyle = aws.Bool(true)
		}
		sess, err := session.NewSession(cfg)
		if err != nil {
			return nil, fmt.Errorf("while creating S3 session: %w", err)
		}
		return imagestore.NewS3Store(s3.New(sess), dest.Bucket), nil
	}
	return imagestore.FileStore{}, nil
}

func startDebugServer(progress *healthz.Progress) {
	debugServeMux := http.NewServeMux()
	debugServeMux.Handle("/healthz", healthz.New(progress))
	debugServeMux.Handle("/readyz", healthz.New(nil))
	debugServeMux.HandleFunc("/debug/pprof/", pprof.Index)
	debugServeMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugServeMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugServeMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugServeMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	debugServer := &http.Server{
		Addr:    *debugListen,
		Handler: debugServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			glog.Fatalf("Debug server died: %v", err)
		}
	}()
}
