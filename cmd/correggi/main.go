package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/correggi-verifiche/api/internal/correction"
	"github.com/correggi-verifiche/api/internal/handler"
	appI18n "github.com/correggi-verifiche/api/internal/i18n"
	"github.com/correggi-verifiche/api/internal/llm"
	"github.com/correggi-verifiche/api/internal/model"
	"github.com/correggi-verifiche/api/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "correggi",
		Short: "AI-assisted correction service for handwritten school tests",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP correction server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "correggi.db", "SQLite database path")
	f.String("ai-url", "https://api.openai.com", "AI provider base URL (without API path)")
	f.String("ai-key", "", "API key for the AI provider (or set CORREGGI_AI_KEY)")
	f.String("vision-model", "gpt-4o", "Multimodal model for test-sheet transcription")
	f.String("text-model", "gpt-4o-mini", "Text model for grading")
	f.StringSlice("vision-paths", llm.DefaultVisionPaths, "Candidate API path prefixes for the vision endpoint, tried in order")
	f.Duration("ai-timeout", llm.DefaultTimeout, "Timeout for a single model call")
	f.Duration("request-timeout", 4*time.Minute, "Timeout for a full correction request")
	f.Int64("max-body-mb", 20, "Maximum request body size in megabytes")
	f.StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins")
	f.StringP("lang", "l", "it", "Response language (it, en)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored corrections as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "correggi.db", "SQLite database path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("CORREGGI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("correggi")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/correggi")
	v.AddConfigPath("/etc/correggi")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	if v.GetString("ai-key") == "" {
		slog.Warn("no AI key configured, correction requests will fail",
			"hint", "set --ai-key or CORREGGI_AI_KEY")
	}
	gw := llm.New(llm.Config{
		BaseURL:     v.GetString("ai-url"),
		APIKey:      v.GetString("ai-key"),
		TextModel:   v.GetString("text-model"),
		VisionModel: v.GetString("vision-model"),
		VisionPaths: v.GetStringSlice("vision-paths"),
		Timeout:     v.GetDuration("ai-timeout"),
	})

	cfg := model.ServerConfig{
		Addr:           v.GetString("addr"),
		Lang:           lang,
		MaxBodyBytes:   v.GetInt64("max-body-mb") * 1024 * 1024,
		CORSOrigins:    v.GetStringSlice("cors-origins"),
		RequestTimeout: v.GetDuration("request-timeout"),
	}

	svc := correction.New(gw)
	h := handler.New(svc, db, gw)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestSize(cfg.MaxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	slog.Info("starting server",
		"addr", cfg.Addr,
		"ai_url", v.GetString("ai-url"),
		"vision_model", v.GetString("vision-model"),
		"text_model", v.GetString("text-model"),
		"lang", lang,
	)
	return http.ListenAndServe(cfg.Addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	results, err := db.ExportAll()
	if err != nil {
		return fmt.Errorf("export corrections: %w", err)
	}

	export := model.CorrectionExport{
		ExportedAt: time.Now().Format(time.RFC3339),
		Count:      len(results),
		Results:    results,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	return nil
}
