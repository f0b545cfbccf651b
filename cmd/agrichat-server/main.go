package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"github.com/krishimitra/agrichat/config"
	"github.com/krishimitra/agrichat/internal/api/handlers"
	"github.com/krishimitra/agrichat/internal/api/middleware"
	"github.com/krishimitra/agrichat/internal/api/routes"
	"github.com/krishimitra/agrichat/internal/cache"
	"github.com/krishimitra/agrichat/internal/chat"
	"github.com/krishimitra/agrichat/internal/generation"
	"github.com/krishimitra/agrichat/internal/logger"
	"github.com/krishimitra/agrichat/internal/providers/llm"
	"github.com/krishimitra/agrichat/internal/providers/stt"
	"github.com/krishimitra/agrichat/internal/providers/tts"
	mongorepo "github.com/krishimitra/agrichat/internal/repositories/mongo"
	pgrepo "github.com/krishimitra/agrichat/internal/repositories/postgres"
	"github.com/krishimitra/agrichat/internal/services"
	"github.com/krishimitra/agrichat/internal/storage"
	"github.com/krishimitra/agrichat/internal/topic"
	"github.com/krishimitra/agrichat/internal/utils"
	"github.com/krishimitra/agrichat/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	ctx := context.Background()

	// Postgres holds the conversation log; without it there is nothing to run.
	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}
	log.Info("postgres connected")

	// Missing Gemini credentials is a startup fatal, never a per-request error.
	project := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if project == "" {
		log.Fatal("GOOGLE_CLOUD_PROJECT is not set")
	}
	location := os.Getenv("VERTEX_LOCATION")
	if location == "" {
		location = "us-central1"
	}

	provider, err := llm.NewVertexGemini(ctx, project, location, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.WithError(err).Fatal("vertex gemini init failed")
	}
	defer provider.Close()

	gen := generation.NewClient(provider, generationTimeout(), log)

	// Topic gate: compiled-in defaults unless a deployment profile is active.
	keywords := topic.DefaultKeywords
	rejection := topic.RejectionMessage
	profiles := pgrepo.NewTopicProfileRepo(config.PostgresDB)
	if profile, err := profiles.GetActive(ctx); err == nil {
		keywords = profile.Keywords
		if profile.Rejection != "" {
			rejection = profile.Rejection
		}
		log.WithField("profile", profile.Name).Info("topic profile loaded")
	} else if !errors.Is(err, utils.ErrNotFound) {
		log.WithError(err).Fatal("failed to load topic profile")
	}
	gate := topic.NewGate(keywords)

	turns := pgrepo.NewTurnRepo(config.PostgresDB)
	recorder, err := chat.NewRecorder(ctx, turns)
	if err != nil {
		log.WithError(err).Fatal("recorder init failed")
	}

	// Redis is optional; it enables the read cache and the realtime voice path.
	var turnCache cache.Cache
	if hasRedisEnv() {
		if err := config.InitRedis(); err != nil {
			log.WithError(err).Fatal("redis init failed")
		}
		turnCache = cache.NewRedisCache(config.RedisClient)
		log.Info("redis connected")
	}

	chatSvc := chat.NewService(gate, gen, recorder, rejection, turnCache, log)

	var googleOpts []option.ClientOption
	if f := os.Getenv("GOOGLE_CREDENTIALS_FILE"); f != "" {
		googleOpts = append(googleOpts, option.WithCredentialsFile(f))
	}

	var transcriber stt.Provider
	if os.Getenv("ENABLE_SPEECH") == "true" {
		transcriber, err = stt.NewGoogleSpeech(ctx, googleOpts...)
		if err != nil {
			log.WithError(err).Fatal("speech-to-text init failed")
		}
	}

	var synth tts.Provider
	if os.Getenv("ENABLE_TTS") == "true" {
		synth, err = tts.NewGoogleTTS(ctx, googleOpts...)
		if err != nil {
			log.WithError(err).Fatal("text-to-speech init failed")
		}
	}

	var uploader storage.Uploader
	if bucket := os.Getenv("UPLOAD_BUCKET"); bucket != "" {
		up, err := storage.NewGCSUploader(ctx, bucket, googleOpts...)
		if err != nil {
			log.WithError(err).Fatal("gcs init failed")
		}
		defer up.Close()
		uploader = up
	}

	// Realtime voice needs Mongo (chunk buffer), Redis (stream), and STT.
	var wsHandler *handlers.WSHandler
	if os.Getenv("MONGO_URI") != "" && config.RedisClient != nil && transcriber != nil {
		if err := config.InitMongo(); err != nil {
			log.WithError(err).Fatal("mongo init failed")
		}
		if err := config.EnsureMongoIndexes(); err != nil {
			log.WithError(err).Fatal("mongo index bootstrap failed")
		}
		log.Info("mongo connected")

		transcripts := services.NewTranscriptService(
			mongorepo.NewTranscriptRepo(config.MongoDatabase()), 24*time.Hour)

		pool := &workers.AudioWorkerPool{
			Redis:       config.RedisClient,
			Transcripts: transcripts,
			Chat:        chatSvc,
			STT:         transcriber,
			Logger:      log,
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("audio worker pool failed to start")
		}

		wsHandler = handlers.NewWSHandler(transcripts, config.RedisClient, log)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Chat:         handlers.NewChatHandler(chatSvc, synth, log),
		Conversation: handlers.NewConversationHandler(chatSvc),
		Media:        handlers.NewMediaHandler(chatSvc, transcriber, uploader, log),
		WS:           wsHandler,
		RequireAuth:  os.Getenv("AUTH_JWT_SECRET") != "",
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func hasRedisEnv() bool {
	return os.Getenv("REDIS_ADDR") != "" || os.Getenv("REDIS_URI") != "" || os.Getenv("REDIS_URL") != ""
}

func generationTimeout() time.Duration {
	if s := os.Getenv("GENERATION_TIMEOUT_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 60 * time.Second
}
