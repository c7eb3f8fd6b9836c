package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	dbm "github.com/cosmos/cosmos-db"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/api"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/config"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/lobby"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/store"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/transcript"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/xlog"
)

// tickInterval is how often the lobby's deadline sweep runs, externally
// driven from here rather than self-spawned by the lobby (unlike the
// teacher's monitorSessions, which starts its own ticker inside Init).
const tickInterval = 5 * time.Second

func main() {
	log.Println("starting kzg ceremony sequencer")

	if err := runSelfTest(); err != nil {
		log.Fatalln("crypto self-test failed:", err)
	}

	cfg := config.New(os.Args[1:]...)

	dbDir, dbName := filepath.Split(cfg.DatabasePath)
	if dbDir == "" {
		dbDir = "."
	}
	db, err := dbm.NewGoLevelDB(dbName, dbDir)
	if err != nil {
		log.Fatalln("opening database:", err)
	}

	st := store.New(db)
	logger := xlog.NewLogger("sequencer")

	tr, ok, err := st.LoadTranscript()
	if err != nil {
		log.Fatalln("loading transcript:", err)
	}
	var transcriptState *transcript.Transcript
	if ok {
		transcriptState = transcript.FromBatch(tr, cfg.CeremonySizes)
		logger.Info("resumed transcript from storage", "contributions", transcriptState.NumContributions())
	} else {
		transcriptState = transcript.NewGenesis(cfg.CeremonySizes)
		logger.Info("starting genesis transcript")
	}

	lb := lobby.New(cfg.LobbyCapacity, cfg.MinCheckinDelay, cfg.ContributionDeadline, transcriptState, st, logger)
	lb.SetPersistHook(st.AppendTranscript)

	server := api.New(lb, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/lobby/join", server.HandleJoin)
	mux.HandleFunc("/lobby/try_contribute", server.HandleTryContribute)
	mux.HandleFunc("/lobby/contribute", server.HandleContribute)
	mux.HandleFunc("/lobby/abort", server.HandleAbort)
	mux.HandleFunc("/lobby/status", server.HandleStatus)

	ctx, cancel := context.WithCancel(context.Background())

	httpServer := &http.Server{
		Addr:         cfg.BindAddr,
		WriteTimeout: 1 * time.Minute,
		ReadTimeout:  30 * time.Second,
		Handler:      mux,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}
	log.Println("listening on", cfg.BindAddr)

	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				lb.Tick()
			case <-ctx.Done():
				return
			}
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalln(err)
		}
	}()

	<-c
	log.Println("exiting...")

	go func() {
		<-c
		log.Fatalln("terminating...")
	}()

	gracefulCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(gracefulCtx); err != nil {
		log.Printf("shutdown error: %v\n", err)
		defer os.Exit(1)
	}

	cancel()
	if err := st.Close(); err != nil {
		log.Printf("close store error: %v\n", err)
	}
}
