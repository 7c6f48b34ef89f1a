package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voicescribe/voicescribe/internal/audio"
	"github.com/voicescribe/voicescribe/internal/config"
	"github.com/voicescribe/voicescribe/internal/media"
	"github.com/voicescribe/voicescribe/internal/metrics"
	"github.com/voicescribe/voicescribe/internal/persist"
	"github.com/voicescribe/voicescribe/internal/recorder"
	"github.com/voicescribe/voicescribe/internal/server"
	"github.com/voicescribe/voicescribe/internal/transcribe"
	"github.com/voicescribe/voicescribe/internal/waveform"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		serve      = flag.Bool("serve", false, "enable the WebSocket control server")
		backend    = flag.String("backend", "", "transcription backend override (cloud or local)")
	)
	flag.Parse()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *backend != "" {
		cfg.Transcription.Backend = *backend
		if err := cfg.Transcription.Validate(); err != nil {
			log.Fatal().Err(err).Msg("invalid backend override")
		}
	}
	if *serve {
		cfg.Server.Enabled = true
	}

	lvl := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		lvl = l
	}
	log.Logger = log.Level(lvl)
	if cfg.Logging.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("voicescribe failed")
	}
}

func run(cfg *config.Config) error {
	host, err := audio.NewPortAudioHost()
	if err != nil {
		return fmt.Errorf("init audio host: %w", err)
	}
	defer host.Close()

	trans := media.NewFFmpeg()

	var be transcribe.Backend
	switch cfg.Transcription.Backend {
	case "local":
		lb, err := transcribe.NewLocalBackend(cfg.Transcription.ModelsDir, cfg.Transcription.LocalModel, log.Logger)
		if err != nil {
			return fmt.Errorf("init local backend: %w", err)
		}
		defer lb.Close()
		be = lb
	default:
		be = transcribe.NewCloudBackend(cfg.Transcription.APIKey, cfg.Transcription.CloudModel, cfg.Transcription.TimeoutDuration())
	}

	m := metrics.New()
	saver := persist.NewSaver(cfg.Files.ContainerPath, cfg.Files.CompressedPath, trans, log.Logger)
	worker := transcribe.NewWorker(be, trans, cfg.Files.IntermediatePath, m, log.Logger)

	meter := newConsoleMeter(os.Stderr)
	displays := multiDisplay{meter}

	var srv *server.Server
	ctrl := recorder.New(host, saver, worker, &displays, recorder.Config{
		Format: audio.Format{
			SampleRate: cfg.Audio.SampleRate,
			Channels:   cfg.Audio.Channels,
			ChunkSize:  cfg.Audio.ChunkSize,
		},
		WaveformInterval: cfg.Waveform.WaveformInterval(),
		Language:         cfg.Transcription.Language,
	}, m, m, log.Logger)

	if cfg.Server.Enabled {
		srv = server.NewServer(ctrl)
		displays = append(displays, srv)
		httpSrv := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      srv.Router(),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.Server.Addr).Msg("control server starting")
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("control server failed")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(ctx)
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	// Enter toggles recording. One line per keypress keeps the loop dumb.
	keys := make(chan struct{})
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			keys <- struct{}{}
		}
		close(keys)
	}()

	log.Info().
		Str("backend", cfg.Transcription.Backend).
		Int("sample_rate", cfg.Audio.SampleRate).
		Msg("ready, press Enter to start/stop recording")

	for {
		select {
		case <-sig:
			log.Info().Msg("shutting down")
			if ctrl.State() == recorder.StateRecording {
				if err := ctrl.Stop(); err != nil {
					log.Error().Err(err).Msg("stop on shutdown failed")
				}
			}
			// Let an in-flight transcription land before exiting.
			if ctrl.Transcribing() {
				log.Info().Msg("waiting for transcription to finish")
				r := <-ctrl.Results()
				printResult(r, srv)
			}
			return nil
		case _, ok := <-keys:
			if !ok {
				return nil
			}
			if err := ctrl.Toggle(); err != nil {
				log.Error().Err(err).Msg("toggle failed")
				continue
			}
			if ctrl.State() == recorder.StateRecording {
				fmt.Fprintln(os.Stderr, "recording... press Enter to stop")
			} else {
				meter.Clear()
			}
		case r := <-ctrl.Results():
			printResult(r, srv)
		}
	}
}

func printResult(r transcribe.Result, srv *server.Server) {
	if srv != nil {
		srv.PublishResult(r)
	}
	fmt.Printf("\n%s\n", r.Message())
}

// multiDisplay fans one waveform tick out to several displays.
type multiDisplay []waveform.Display

func (m *multiDisplay) Update(samples []int16) {
	for _, d := range *m {
		d.Update(samples)
	}
}
