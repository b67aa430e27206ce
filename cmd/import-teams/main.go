// Command import-teams loads the organizers' spreadsheet into riddles and
// team accounts and writes the plaintext credentials manifest.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"riddlehunt/config"
	"riddlehunt/database"
	"riddlehunt/logging"
	"riddlehunt/repositories"
	"riddlehunt/services"
	"riddlehunt/utils"

	"github.com/sirupsen/logrus"
)

// Config holds the command line options of one import run
type Config struct {
	Source       string
	Sheet        string
	Output       string
	SecretLength int
	DryRun       bool
}

// ParseConfig parses CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		Sheet:        services.DefaultSheetName,
		Output:       services.DefaultCredentialsPath,
		SecretLength: services.DefaultSecretLength,
	}

	fs.StringVar(&cfg.Source, "source", "", "path to the teams workbook (.xlsx) or .csv export")
	fs.StringVar(&cfg.Sheet, "sheet", cfg.Sheet, "worksheet holding the team rows")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "credentials manifest to write")
	fs.IntVar(&cfg.SecretLength, "secret-length", cfg.SecretLength, "length of generated team secrets")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "run the import and roll it back without writing the manifest")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Source) == "" {
		return Config{}, errors.New("source is required")
	}
	if cfg.SecretLength < services.MinSecretLength {
		return Config{}, fmt.Errorf("secret-length must be at least %d", services.MinSecretLength)
	}
	return cfg, nil
}

func (c Config) importConfig() services.ImportConfig {
	return services.ImportConfig{
		SourceFile:            c.Source,
		SheetName:             c.Sheet,
		OutputCredentialsPath: c.Output,
		SecretLength:          c.SecretLength,
		DryRun:                c.DryRun,
	}
}

// Run checks the source and output paths, then connects to the database
// from the environment and performs the import. Structural errors return
// before any connection is opened.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if err := services.ValidateImport(cfg.importConfig()); err != nil {
		return err
	}

	appCfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(appCfg.LogLevel, appCfg.LogFormat)

	db, err := database.InitDB(appCfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	importer := services.NewTeamImporter(
		repositories.NewGormStore(db),
		utils.NewBcryptHasher(appCfg.BcryptCost),
		logger,
	)
	return runImport(ctx, importer, cfg, out, logger)
}

func runImport(ctx context.Context, importer *services.TeamImporter, cfg Config, out io.Writer, logger logrus.FieldLogger) error {
	if out == nil {
		out = io.Discard
	}

	report, err := importer.Run(ctx, cfg.importConfig())
	if err != nil {
		logger.WithError(err).Error("import failed")
		return err
	}

	verb := "imported"
	if cfg.DryRun {
		verb = "validated (dry run)"
	}
	_, err = fmt.Fprintf(out, "%s: %d riddles created, %d teams created, %d teams skipped, %d rows skipped\n",
		verb, report.RiddlesCreated, report.TeamsCreated, report.TeamsSkipped, report.RowsSkipped)
	if err != nil {
		return err
	}
	if !cfg.DryRun && report.TeamsCreated > 0 {
		_, err = fmt.Fprintf(out, "credentials written to %s, distribute them and keep the file private\n", cfg.Output)
	}
	return err
}

func main() {
	cfg, err := ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
