package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"hotel-agent/handler"
	"hotel-agent/internal/catalog"
	"hotel-agent/internal/completion"
	"hotel-agent/internal/dialogue"
	"hotel-agent/internal/integrations/gemini"
	"hotel-agent/internal/integrations/openai"
	"hotel-agent/internal/integrations/paramstore"
	"hotel-agent/internal/repository"
	"hotel-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// .env is optional and only used for local runs.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "err", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(os.Getenv("LOG_LEVEL"))}))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	stateTable := mustEnv("STATE_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	provider := strings.ToLower(envString("LLM_PROVIDER", "openai"))
	limits := usecase.Limits{
		MaxHistoryItems:  envInt("MAX_HISTORY_ITEMS", 200),
		MaxMessageLength: envInt("MAX_MESSAGE_LENGTH", 500),
		MaxTurns:         envInt("MAX_CONVERSATION_TURNS", 100),
	}
	completionRPS := envFloat("COMPLETION_RPS", 5)
	completionBurst := envInt("COMPLETION_BURST", 10)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	stateClient, err := repository.New(awsdynamodb.NewFromConfig(cfg), stateTable)
	if err != nil {
		slog.Error("failed to create state client", "err", err)
		os.Exit(1)
	}

	var llm completion.Completer
	switch provider {
	case "openai":
		llm, err = openai.NewClient(ssmClient, paramPrefix)
	case "gemini":
		llm, err = gemini.NewClient(ssmClient, paramPrefix)
	default:
		slog.Error("unsupported LLM provider", "provider", provider)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("failed to create LLM client", "provider", provider, "err", err)
		os.Exit(1)
	}

	gateway, err := completion.New(llm, ssmClient, paramPrefix, completion.WithRateLimit(completionRPS, completionBurst))
	if err != nil {
		slog.Error("failed to create completion gateway", "err", err)
		os.Exit(1)
	}

	hotels, err := catalog.Default()
	if err != nil {
		slog.Error("failed to load hotel catalog", "err", err)
		os.Exit(1)
	}
	router, err := dialogue.New(hotels, gateway, dialogue.WithLogger(logger.With("component", "dialogue")))
	if err != nil {
		slog.Error("failed to create dialogue router", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	chatService, err := usecase.NewChatService(router, stateClient, limits, logger)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	slog.Info("hotel agent starting", "provider", provider, "hotels", len(hotels.All()))
	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func logLevel(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
		return slog.LevelInfo
	}
	return level
}
