package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/crowdfeud/go-feud/infrastructure/bus"
	"github.com/crowdfeud/go-feud/infrastructure/middleware"
	"github.com/crowdfeud/go-feud/infrastructure/store"
	"github.com/crowdfeud/go-feud/internal/application"
	"github.com/crowdfeud/go-feud/internal/domain"
	"github.com/crowdfeud/go-feud/internal/ports"
	"github.com/crowdfeud/go-feud/sdk/feud"
)

const httpTimeout = 10 * time.Second

func serve(ctx context.Context, cfg *serverConfig) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	gameCfg := application.DefaultConfig()
	if cfg.configPath != "" {
		loaded, err := application.LoadFile(cfg.configPath)
		if err != nil {
			return err
		}
		gameCfg = loaded
	}

	snapshots, closeStore, err := openStore(ctx, gameCfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	eventBus := bus.NewInProcessBus()
	hub := bus.NewHub(logger, cfg.buzzRate)
	metrics := middleware.NewPrometheusMetrics()

	session, err := feud.NewSession(gameCfg,
		feud.WithStore(snapshots),
		feud.WithBus(eventBus),
		feud.WithMetrics(metrics),
		feud.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	if err := session.Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to hydrate session: %w", err)
	}

	// Every game event fans out to the websocket surfaces.
	unsubscribe := eventBus.Subscribe(hub.BroadcastEvent)
	defer unsubscribe()

	mux := httprouter.New()
	registerRoutes(mux, session, hub, gameCfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           mux,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       httpTimeout,
		ReadHeaderTimeout: httpTimeout,
	}

	go hub.Run()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "storage", gameCfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		session.ConsumeBuzzes(gctx, hub.Buzzes())
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg application.StorageConfig) (ports.SnapshotStore, func(), error) {
	switch cfg.Backend {
	case "sqlite":
		s, err := store.OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "redis":
		s, err := store.NewRedisStore(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}

// boardRequest carries the vote evidence for a new board. Which fields
// matter depends on the configured scoring model.
type boardRequest struct {
	Question domain.Question `json:"question"`
	Answers  []domain.Answer `json:"answers"`
	Ballots  []domain.Ballot `json:"ballots"`
}

func registerRoutes(mux *httprouter.Router, session *feud.Session, hub *bus.Hub, gameCfg *application.Config) {
	mux.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	mux.GET("/ws", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		hub.ServeWS(w, r)
	})

	mux.GET("/snapshot", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, session.Snapshot())
	})

	mux.POST("/game/board", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req boardRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		var source domain.VoteSource
		if gameCfg.Scoring.Model == "inline" {
			source = domain.InlineVotes{Answers: req.Answers}
		} else {
			source = domain.BallotVotes{
				QuestionID: req.Question.ID,
				Ballots:    req.Ballots,
				Answers:    req.Answers,
			}
		}
		respond(w, session.LoadBoard(r.Context(), req.Question, source))
	})

	mux.POST("/game/buzz/:team", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		team, err := strconv.Atoi(ps.ByName("team"))
		if err != nil {
			http.Error(w, "invalid team index", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"won": session.BuzzIn(r.Context(), team)})
	})

	mux.POST("/game/active-team", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			TeamIndex int `json:"teamIndex"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		respond(w, session.SetActiveTeam(r.Context(), req.TeamIndex))
	})

	mux.POST("/game/strikes", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			Strikes int `json:"strikes"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		respond(w, session.SetStrikes(r.Context(), req.Strikes))
	})

	mux.POST("/game/reveal", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			AnswerID string `json:"answerId"`
			Guess    string `json:"guess"`
			Guessed  *bool  `json:"guessed"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Guess != "" {
			answer, ok, err := session.RevealGuess(r.Context(), req.Guess)
			if err != nil {
				respond(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"matched": ok, "answer": answer})
			return
		}
		guessed := true
		if req.Guessed != nil {
			guessed = *req.Guessed
		}
		respond(w, session.RevealAnswer(r.Context(), req.AnswerID, guessed))
	})

	mux.POST("/game/steal", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			RoundSteal bool `json:"roundSteal"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		respond(w, session.SetRoundSteal(r.Context(), req.RoundSteal))
	})

	mux.POST("/game/team/:index", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		index, err := strconv.Atoi(ps.ByName("index"))
		if err != nil {
			http.Error(w, "invalid team index", http.StatusBadRequest)
			return
		}
		var patch domain.TeamPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		respond(w, session.UpdateTeam(r.Context(), index, patch))
	})

	mux.POST("/game/next-round", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		respond(w, session.NextRound(r.Context()))
	})

	mux.POST("/game/round", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			Round int `json:"round"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		respond(w, session.JumpToRound(r.Context(), req.Round))
	})

	mux.POST("/game/award", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		respond(w, session.AwardPoints(r.Context()))
	})

	mux.POST("/game/end-round", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		respond(w, session.EndRound(r.Context()))
	})

	mux.POST("/game/end", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		respond(w, session.EndGame(r.Context()))
	})

	mux.POST("/game/reset", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		respond(w, session.Reset(r.Context()))
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// respond maps the domain error taxonomy onto HTTP statuses: validation
// failures are the client's data (400), precondition violations are
// conflicts with game state (409), unknown ids are 404.
func respond(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	var (
		validationErr   *domain.ValidationError
		invalidStateErr *domain.InvalidStateError
		notFoundErr     *domain.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &invalidStateErr):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &notFoundErr):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
