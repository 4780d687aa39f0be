package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/superxuu/depu/internal/config"
	"github.com/superxuu/depu/internal/jwt"
	"github.com/superxuu/depu/internal/mux"
	"github.com/superxuu/depu/pkg/account"
	"github.com/superxuu/depu/pkg/room"
	"github.com/superxuu/depu/pkg/token"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", "", "the listen address (overrides the configuration)")

func main() {
	_ = godotenv.Load()
	flag.Parse()
	setupLogger()

	cfg := config.Instance()
	setupJWT(cfg)

	registry := account.NewRegistry(cfg.Game.StartingChips)

	host := room.NewHost(logrus.StandardLogger(), registry, room.HostOptions{
		MaxSeats:              cfg.Game.MaxSeats,
		SmallBlind:            cfg.Game.SmallBlind,
		BigBlind:              cfg.Game.BigBlind,
		ActionTimeout:         time.Duration(cfg.Game.ActionTimeoutSeconds) * time.Second,
		OfflineFoldGrace:      time.Duration(cfg.Game.OfflineFoldGraceSeconds) * time.Second,
		HeartbeatGrace:        time.Duration(cfg.Game.HeartbeatGraceSeconds) * time.Second,
		SinglePlayerCountdown: time.Duration(cfg.Game.SinglePlayerCountdownSeconds) * time.Second,
	})
	host.StartShift()

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})

	listenAddr := cfg.ListenAddr
	if *addr != "" {
		listenAddr = *addr
	}

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, registry, host))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithField("addr", srv.Addr).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

func setupJWT(cfg config.Config) {
	secret := cfg.JWT.Secret
	if secret == "" {
		generated, err := token.Generate(64)
		if err != nil {
			logrus.WithError(err).Fatal("could not generate a JWT secret")
		}

		logrus.Warn("no JWT secret configured; sessions will not survive a restart")
		secret = generated
	}

	jwt.SetSecret(secret)
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
