// Command msgserver is a small TCP server for exercising the engine's
// stream-oriented Source blocks: it replays a file to every connected
// client, one fixed-size block at a time, at a configurable pace, looping
// back to the start of the file when requested. Grounded on the original
// implementation's Application/Server split (see original_source/app/msg-server).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const appName = "msgserver"
const version = "0.1.0"

const (
	exitSuccess    = 0
	exitInvalidCLI = 101
	exitRuntime    = 1
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type cliConfig struct {
	showHelp    bool
	showVersion bool
	address     string
	port        uint
	delay       float64
	blockSize   int
	loop        bool
	file        string
}

func run(argv []string) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	cfg := &cliConfig{}
	fs.BoolVar(&cfg.showHelp, "h", false, "print usage and exit")
	fs.BoolVar(&cfg.showHelp, "help", false, "print usage and exit")
	fs.BoolVar(&cfg.showVersion, "v", false, "print version and exit")
	fs.BoolVar(&cfg.showVersion, "version", false, "print version and exit")
	fs.StringVar(&cfg.address, "address", "0.0.0.0", "address to listen on")
	fs.UintVar(&cfg.port, "port", 0, "TCP port number")
	fs.Float64Var(&cfg.delay, "delay", 0, "delay between two messages, in seconds (e.g. 0.1)")
	fs.IntVar(&cfg.blockSize, "block-size", 128, "size of each block sent, in bytes")
	fs.BoolVar(&cfg.loop, "loop", true, "loop back to the start of the file at EOF")

	fs.Usage = func() { printHelp(fs) }

	if err := fs.Parse(argv); err != nil {
		return exitInvalidCLI
	}

	if cfg.showHelp {
		printHelp(fs)
		return exitSuccess
	}
	if cfg.showVersion {
		fmt.Printf("%s version %s\n", appName, version)
		return exitSuccess
	}

	args := fs.Args()
	if len(args) != 1 || cfg.port == 0 {
		printHelp(fs)
		return exitInvalidCLI
	}
	cfg.file = args[0]

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Error("failed to start server", "error", err)
		return exitRuntime
	}

	if err := srv.run(context.Background()); err != nil {
		logger.Error("server stopped with error", "error", err)
		return exitRuntime
	}
	return exitSuccess
}

func printHelp(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "%s - replay a file to connected TCP clients\n\n", appName)
	fmt.Fprintf(os.Stderr, "Usage: %s -h | -v | --port=N --delay=SECONDS [options] <file>\n\n", appName)
	fs.PrintDefaults()
}

type server struct {
	cfg      *cliConfig
	logger   *slog.Logger
	listener net.Listener
	limiter  *rate.Limiter

	mu      sync.Mutex
	clients map[net.Conn]struct{}
}

func newServer(cfg *cliConfig, logger *slog.Logger) (*server, error) {
	if _, err := os.Stat(cfg.file); err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.address, cfg.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	delay := time.Duration(cfg.delay * float64(time.Second))
	if delay <= 0 {
		delay = time.Millisecond
	}

	return &server{
		cfg:      cfg,
		logger:   logger,
		listener: ln,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		clients:  make(map[net.Conn]struct{}),
	}, nil
}

func (s *server) run(ctx context.Context) error {
	s.logger.Info("listening", "address", s.listener.Addr().String())

	go s.acceptLoop()

	f, err := os.Open(s.cfg.file)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	reader := bufio.NewReader(f)

	buf := make([]byte, s.cfg.blockSize)
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil
		}

		n, err := reader.Read(buf)
		if n > 0 {
			s.broadcast(buf[:n])
		}
		if err == io.EOF {
			if !s.cfg.loop {
				s.logger.Info("end of file reached, shutting down")
				return nil
			}
			s.logger.Info("end of file reached, reopening")
			if _, serr := f.Seek(0, io.SeekStart); serr != nil {
				return fmt.Errorf("rewind file: %w", serr)
			}
			reader.Reset(f)
			continue
		}
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
	}
}

func (s *server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.logger.Info("new connection", "remote", conn.RemoteAddr().String())
		s.mu.Lock()
		s.clients[conn] = struct{}{}
		s.mu.Unlock()
	}
}

func (s *server) broadcast(block []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if _, err := conn.Write(block); err != nil {
			s.logger.Error("send failed, dropping client", "remote", conn.RemoteAddr().String(), "error", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
