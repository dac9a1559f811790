package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claude/fittrack/internal/config"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/repository"
	"github.com/claude/fittrack/internal/storage"
)

const usage = `Usage: fittrack-backup [-config config.yaml] <command> [flags]

Commands:
  export [-o file]   write a JSON backup (stdout by default)
  import -f file     replace all data with a JSON backup
  info               print record counts
`

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and FITTRACK_* env vars if empty)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Logs go to stderr so an export on stdout stays clean.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Database.Path(), cfg.Database.SchemaVersion(storage.SchemaVersion))
	if err != nil {
		log.Error("failed to open database", "path", cfg.Database.Path(), "error", err)
		os.Exit(1)
	}
	defer db.Close()
	repo := repository.New(db, log)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "export":
		err = runExport(ctx, repo, args)
	case "import":
		err = runImport(ctx, repo, args, log)
	case "info":
		err = runInfo(ctx, repo)
	default:
		flag.Usage()
		db.Close()
		os.Exit(2)
	}
	if err != nil {
		log.Error(cmd+" failed", "error", err)
		db.Close()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.FromEnv()
	}
	return config.Load(path)
}

func runExport(ctx context.Context, repo *repository.Repository, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file (stdout if empty)")
	fs.Parse(args)

	snap, err := repo.ExportData(ctx)
	if err != nil {
		return err
	}

	if *out == "" {
		return encodeBackup(os.Stdout, snap)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *out, err)
	}
	if err := writeBackup(f, snap); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	return nil
}

func encodeBackup(w io.Writer, snap models.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// writeBackup encodes snap to wc and closes it. A failed close is an error:
// the backup may not have reached the disk.
func writeBackup(wc io.WriteCloser, snap models.Snapshot) error {
	if err := encodeBackup(wc, snap); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

func runImport(ctx context.Context, repo *repository.Repository, args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("f", "", "backup file to import (required)")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("-f is required")
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *in, err)
	}
	defer f.Close()

	snap, err := repository.ParseSnapshot(f)
	if err != nil {
		return err
	}
	if err := repo.ImportData(ctx, snap); err != nil {
		return err
	}
	log.Info("import complete", "file", *in)
	return runInfo(ctx, repo)
}

func runInfo(ctx context.Context, repo *repository.Repository) error {
	info, err := repo.BackupInfo(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
