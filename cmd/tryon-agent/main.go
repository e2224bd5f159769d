// Command tryon-agent runs the virtual wardrobe assistant: a Claude
// conversation loop over the try-on toolkit, with uploads entering through
// the /upload REPL command.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/wearlab/tryon-agent/pkg/agent"
	"github.com/wearlab/tryon-agent/pkg/artifacts"
	"github.com/wearlab/tryon-agent/pkg/catalog"
	"github.com/wearlab/tryon-agent/pkg/config"
	"github.com/wearlab/tryon-agent/pkg/fitting"
	"github.com/wearlab/tryon-agent/pkg/imagegen"
	"github.com/wearlab/tryon-agent/pkg/imaging"
	"github.com/wearlab/tryon-agent/pkg/metrics"
	"github.com/wearlab/tryon-agent/pkg/ratelimit"
	"github.com/wearlab/tryon-agent/pkg/tools/garments"
	"github.com/wearlab/tryon-agent/pkg/tools/images"
	"github.com/wearlab/tryon-agent/pkg/tools/tryon"
	"github.com/wearlab/tryon-agent/toolkit"
)

// metricsObserver forwards toolkit callbacks to the metrics recorder.
type metricsObserver struct {
	rec metrics.Recorder
}

func (o metricsObserver) ToolHandled(group, tool string, err error, _ time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.rec.IncToolCall(group, tool, status)
}

func buildStore(cfg config.Config) (artifacts.Store, error) {
	switch cfg.ArtifactBackend {
	case config.BackendFS:
		return artifacts.NewFSStore(cfg.ArtifactDir)
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis at %s: %w", cfg.RedisAddr, err)
		}
		return artifacts.NewRedisStore(rdb), nil
	case config.BackendMemory:
		return artifacts.NewMemStore(), nil
	}
	return nil, fmt.Errorf("unknown artifact backend %q", cfg.ArtifactBackend)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.AnthropicKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}
	if cfg.GeminiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("artifact store: %v", err)
	}
	namer := artifacts.NewNamer(store)

	cat, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	if cat.Len() == 0 {
		log.Fatalf("catalog: no garment images in %s", cfg.CatalogDir)
	}
	log.Printf("catalog: %d garments from %s", cat.Len(), cfg.CatalogDir)

	limiter, err := ratelimit.New(ratelimit.Config{Cooldown: cfg.Cooldown})
	if err != nil {
		log.Fatalf("rate limiter: %v", err)
	}

	validator, err := imaging.NewValidator(9, 16, cfg.RatioExactPct, cfg.RatioAcceptPct)
	if err != nil {
		log.Fatalf("ratio validator: %v", err)
	}

	generator, err := imagegen.NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("image generator: %v", err)
	}
	defer generator.Close()

	var recorder metrics.Recorder = metrics.Noop{}
	if cfg.MetricsAddr != "" {
		recorder = metrics.NewProm("tryon")
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			log.Printf("metrics: listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	service, err := fitting.New(fitting.Deps{
		Store:             store,
		Namer:             namer,
		Catalog:           cat,
		Limiter:           limiter,
		Generator:         generator,
		Validator:         validator,
		Metrics:           recorder,
		ReferenceClass:    cfg.ReferencePrefix,
		ResultClass:       cfg.ResultPrefix,
		GenerationTimeout: cfg.GenerationTimeout,
	})
	if err != nil {
		log.Fatalf("service: %v", err)
	}

	imageTools, err := images.New(service)
	if err != nil {
		log.Fatal(err)
	}
	garmentTools, err := garments.New(cat, service)
	if err != nil {
		log.Fatal(err)
	}
	tryOnTools, err := tryon.New(service)
	if err != nil {
		log.Fatal(err)
	}

	tk := toolkit.New("wardrobe",
		imageTools.Group(),
		garmentTools.Group(),
		tryOnTools.Group(),
	).WithObserver(metricsObserver{rec: recorder})

	a, err := agent.New(agent.Config{
		APIKey:   cfg.AnthropicKey,
		Toolkit:  tk,
		Service:  service,
		MaxTurns: cfg.MaxTurns,
	})
	if err != nil {
		log.Fatalf("agent: %v", err)
	}
	log.Printf("session %s started", a.SessionID())

	fmt.Println("Virtual wardrobe assistant. Commands: /upload <path>, /quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return
		case strings.HasPrefix(line, "/upload "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/upload "))
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Printf("cannot read %s: %v\n", path, err)
				continue
			}
			res, err := a.Upload(ctx, data)
			if err != nil {
				fmt.Printf("upload rejected: %v\n", err)
				continue
			}
			fmt.Printf("saved %s (%dx%d, ratio: %s)\n",
				res.Saved.Filename, res.Ratio.WidthPx, res.Ratio.HeightPx, res.Ratio.Classification)
		default:
			reply, err := a.Send(ctx, line)
			if err != nil {
				fmt.Printf("conversation error: %v\n", err)
				continue
			}
			fmt.Println(reply)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("stdin: %v", err)
	}
}
