package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"riddlehunt/models"
	"riddlehunt/repositories"
	"riddlehunt/utils"
	"riddlehunt/utils/apperror"

	"github.com/sirupsen/logrus"
)

const (
	DefaultSheetName       = "Teams_Data"
	DefaultCredentialsPath = "teams_credentials_FOR_ORGANIZERS.csv"
)

var errDryRunRollback = errors.New("dry run, rolling back")

// ErrManifestExists is returned when the credentials file is already
// present. It is never overwritten.
var ErrManifestExists = errors.New("credentials file already exists")

// ImportConfig describes one run of the bulk team import
type ImportConfig struct {
	SourceFile            string
	SheetName             string
	OutputCredentialsPath string
	SecretLength          int
	// DryRun runs the whole import then rolls it back without writing the manifest
	DryRun bool
}

// ImportReport counts what a run created and skipped
type ImportReport struct {
	RiddlesCreated int
	TeamsCreated   int
	TeamsSkipped   int
	RowsSkipped    int
}

// TeamImporter turns the organizers' spreadsheet into riddles, team
// accounts and a plaintext credentials manifest
type TeamImporter struct {
	store  repositories.Store
	hasher utils.PasswordHasher
	logger logrus.FieldLogger
}

func NewTeamImporter(store repositories.Store, hasher utils.PasswordHasher, logger logrus.FieldLogger) *TeamImporter {
	return &TeamImporter{store: store, hasher: hasher, logger: logger}
}

// Run performs the import. Structural problems (missing file, sheet or
// columns, an existing credentials file) abort before the manifest is
// opened or a transaction starts.
// All database writes happen in a single transaction. The manifest is not
// part of that transaction: if the transaction rolls back, lines already
// written to it refer to teams that do not exist, and the returned error
// says how many.
func (im *TeamImporter) Run(ctx context.Context, cfg ImportConfig) (ImportReport, error) {
	cfg, generator, err := prepareImport(cfg)
	if err != nil {
		return ImportReport{}, err
	}

	im.logger.WithFields(logrus.Fields{
		"source": cfg.SourceFile,
		"sheet":  cfg.SheetName,
	}).Info("loading import source")

	rows, err := ReadImportRows(cfg.SourceFile, cfg.SheetName)
	if err != nil {
		return ImportReport{}, err
	}

	var out io.Writer = io.Discard
	if !cfg.DryRun {
		// O_EXCL: a previous run's manifest holds the only plaintext copy of its secrets
		file, err := os.OpenFile(cfg.OutputCredentialsPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return ImportReport{}, manifestExistsError(cfg.OutputCredentialsPath)
			}
			return ImportReport{}, fmt.Errorf("failed to open credentials file: %w", err)
		}
		defer file.Close()
		out = file
	}

	manifest := NewManifestWriter(out)
	if err := manifest.WriteHeader(); err != nil {
		return ImportReport{}, fmt.Errorf("failed to write credentials file: %w", err)
	}
	im.logger.WithField("path", cfg.OutputCredentialsPath).Info("opened credentials file for writing")

	var report ImportReport
	err = im.store.Transaction(ctx, func(tx repositories.Store) error {
		im.logger.Info("starting database transaction")
		for _, row := range rows {
			if err := im.importRow(ctx, tx, generator, manifest, row, &report); err != nil {
				return fmt.Errorf("row %d: %w", row.Line, err)
			}
		}
		if cfg.DryRun {
			return errDryRunRollback
		}
		return nil
	})

	if errors.Is(err, errDryRunRollback) {
		im.logger.WithFields(reportFields(report)).Info("dry run complete, transaction rolled back")
		return report, nil
	}
	if err != nil {
		if lines := manifest.Lines(); lines > 0 {
			im.logger.WithFields(logrus.Fields{
				"path":  cfg.OutputCredentialsPath,
				"lines": lines,
			}).Warn("transaction rolled back but the credentials file already contains entries for teams that were not created")
			return ImportReport{}, fmt.Errorf("import rolled back, %d credential lines in %s have no matching team: %w",
				lines, cfg.OutputCredentialsPath, err)
		}
		return ImportReport{}, fmt.Errorf("import rolled back: %w", err)
	}

	im.logger.WithFields(reportFields(report)).Info("import complete")
	return report, nil
}

// ValidateImport runs every structural check of Run without touching the
// database: secret length, source file, sheet, columns and the credentials
// file not existing yet.
func ValidateImport(cfg ImportConfig) error {
	cfg, _, err := prepareImport(cfg)
	if err != nil {
		return err
	}
	_, err = ReadImportRows(cfg.SourceFile, cfg.SheetName)
	return err
}

func prepareImport(cfg ImportConfig) (ImportConfig, *CredentialGenerator, error) {
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.OutputCredentialsPath == "" {
		cfg.OutputCredentialsPath = DefaultCredentialsPath
	}
	if cfg.SecretLength == 0 {
		cfg.SecretLength = DefaultSecretLength
	}

	generator, err := NewCredentialGenerator(cfg.SecretLength)
	if err != nil {
		return cfg, nil, err
	}

	if !cfg.DryRun {
		if _, err := os.Stat(cfg.OutputCredentialsPath); err == nil {
			return cfg, nil, manifestExistsError(cfg.OutputCredentialsPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return cfg, nil, fmt.Errorf("failed to stat credentials file: %w", err)
		}
	}
	return cfg, generator, nil
}

func manifestExistsError(path string) error {
	return apperror.New(apperror.KindValidation,
		fmt.Sprintf("credentials file %s already exists, move it away or choose another output path", path),
		ErrManifestExists)
}

func (im *TeamImporter) importRow(ctx context.Context, tx repositories.Store, generator *CredentialGenerator, manifest *ManifestWriter, row ImportRow, report *ImportReport) error {
	teamID := strings.TrimSpace(row.TeamID)
	if teamID == "" || strings.TrimSpace(row.Riddle) == "" {
		report.RowsSkipped++
		return nil
	}

	riddle, created, err := tx.Riddles().FindOrCreate(ctx, row.Riddle, row.LeadName)
	if err != nil {
		return err
	}
	if created {
		report.RiddlesCreated++
		im.logger.WithField("lead", row.LeadName).Debug("created new riddle")
	}

	exists, err := tx.Teams().Exists(ctx, teamID)
	if err != nil {
		return err
	}
	if exists {
		report.TeamsSkipped++
		im.logger.WithField("team", teamID).Info("team already exists, skipping")
		return nil
	}

	password, err := generator.Generate()
	if err != nil {
		return err
	}
	hash, err := im.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	team := &models.Team{
		Username:     teamID,
		PasswordHash: hash,
		RiddleID:     riddle.ID,
		FinalAnswer:  row.FinalAnswer,
	}
	created, err = tx.Teams().Create(ctx, team)
	if err != nil {
		return err
	}
	if !created {
		report.TeamsSkipped++
		return nil
	}

	if err := manifest.WriteCredential(teamID, password); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	report.TeamsCreated++
	return nil
}

func reportFields(r ImportReport) logrus.Fields {
	return logrus.Fields{
		"riddles_created": r.RiddlesCreated,
		"teams_created":   r.TeamsCreated,
		"teams_skipped":   r.TeamsSkipped,
		"rows_skipped":    r.RowsSkipped,
	}
}
