package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"palmr-api/config"
)

const usage = `usage: palmrctl [flags] <command> [args]

commands:
  login                 print a bearer token for PALMR_LOGIN / PALMR_PASSWORD
  upload <file>...      upload and register files
  ls [page]             list your files
  download <object>...  download objects into -o (a directory)
  zip <object>...       bundle objects into the -o archive
  invite                create an invite token (admin)
`

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err = godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatal("error loading .env file", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, os.Args[1:], config.LoadClient(), os.Stdout, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error("palmrctl failed", zap.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}

type options struct {
	cfg      config.Client
	out      string
	folderID string
	quiet    bool
}

func parseFlags(args []string, cfg config.Client, stderr io.Writer) (options, []string, error) {
	opts := options{cfg: cfg}

	fs := flag.NewFlagSet("palmrctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = io.WriteString(stderr, usage+"\nflags:\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.cfg.ServerURL, "a", cfg.ServerURL, "palmr server base url")
	fs.StringVar(&opts.cfg.Token, "t", cfg.Token, "bearer token, skips login")
	fs.IntVar(&opts.cfg.Concurrency, "c", cfg.Concurrency, "parallel uploads, 0 for unlimited")
	fs.Int64Var(&opts.cfg.MaxFileSize, "max-size", cfg.MaxFileSize, "reject files larger than this many bytes")
	fs.StringVar(&opts.out, "o", "", "output directory for download, archive path for zip")
	fs.StringVar(&opts.folderID, "folder", "", "register uploads inside this folder id")
	fs.BoolVar(&opts.quiet, "q", false, "no progress bar")

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return opts, nil, flag.ErrHelp
	}

	return opts, fs.Args(), nil
}

func run(ctx context.Context, args []string, cfg config.Client, stdout io.Writer, logger *zap.Logger) error {
	opts, rest, err := parseFlags(args, cfg, os.Stderr)
	if err != nil {
		return err
	}

	cli := newCLI(opts, stdout, logger)
	commands := map[string]func(ctx context.Context, args []string) error{
		"login":    cli.login,
		"upload":   cli.upload,
		"ls":       cli.list,
		"download": cli.download,
		"zip":      cli.zip,
		"invite":   cli.invite,
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", rest[0])
	}
	if err = cli.authenticate(ctx); err != nil {
		return err
	}

	return cmd(ctx, rest[1:])
}
