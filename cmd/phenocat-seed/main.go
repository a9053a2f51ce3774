// Command phenocat-seed loads the study catalog, the controlled tag
// vocabulary and the landing-page content from a YAML file into Postgres.
// Catalog entries are upserted and existing tags are skipped, so the seed
// file can be re-applied.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/UW-GAC/pie-sub001/internal/database"
	"github.com/UW-GAC/pie-sub001/internal/domain"
	"github.com/UW-GAC/pie-sub001/internal/platform/retry"
)

// The system account that owns seeded tags. It satisfies the creator
// foreign key on tags without granting anyone a login.
const (
	seedUserEmail = "dcc-seed@system.invalid"
	seedUserName  = "DCC Seed"
)

type seedFile struct {
	Studies          []seedStudy           `yaml:"studies"`
	HarmonizedTraits []seedHarmonizedTrait `yaml:"harmonized_traits"`
	Tags             []seedTag             `yaml:"tags"`
	HomeContents     []seedHomeContent     `yaml:"home_contents"`
}

type seedStudy struct {
	Accession int64              `yaml:"accession"`
	Name      string             `yaml:"name"`
	Versions  []seedStudyVersion `yaml:"versions"`
}

type seedStudyVersion struct {
	Version        int           `yaml:"version"`
	ParticipantSet int           `yaml:"participant_set"`
	Deprecated     bool          `yaml:"deprecated"`
	Datasets       []seedDataset `yaml:"datasets"`
}

type seedDataset struct {
	Accession   int64       `yaml:"accession"`
	Version     int         `yaml:"version"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Deprecated  bool        `yaml:"deprecated"`
	Traits      []seedTrait `yaml:"traits"`
}

type seedTrait struct {
	Accession   int64  `yaml:"accession"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	DataType    string `yaml:"data_type"`
	Unit        string `yaml:"unit"`
	Deprecated  bool   `yaml:"deprecated"`
}

type seedHarmonizedTrait struct {
	Name        string `yaml:"name"`
	FlavorName  string `yaml:"flavor_name"`
	Version     int    `yaml:"version"`
	Description string `yaml:"description"`
	DataType    string `yaml:"data_type"`
	Unit        string `yaml:"unit"`
}

type seedTag struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Instructions string `yaml:"instructions"`
}

type seedHomeContent struct {
	Title    string `yaml:"title"`
	Body     string `yaml:"body"`
	Position int    `yaml:"position"`
}

func main() {
	var (
		file        = flag.String("file", "seed.yaml", "path to the seed file")
		databaseURL = flag.String("database", os.Getenv("DATABASE_URL"), "Postgres URL (or set DATABASE_URL env)")
		verbose     = flag.Bool("verbose", false, "verbose logging")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if *databaseURL == "" {
		log.Fatal("Postgres URL required (--database or DATABASE_URL env)")
	}

	seed, err := loadSeedFile(*file)
	if err != nil {
		log.Fatalf("Failed to load seed file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := connectWithRetry(ctx, *databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrationsWithLock(ctx, pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := apply(ctx, pool, seed); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
}

func loadSeedFile(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, study := range seed.Studies {
		if study.Accession <= 0 || study.Name == "" {
			return nil, fmt.Errorf("study %d: accession and name are required", i)
		}
		for _, v := range study.Versions {
			if v.Version <= 0 {
				return nil, fmt.Errorf("study phs%06d: versions are numbered from 1", study.Accession)
			}
			for _, d := range v.Datasets {
				if d.Accession <= 0 || d.Name == "" {
					return nil, fmt.Errorf("study phs%06d v%d: dataset accession and name are required",
						study.Accession, v.Version)
				}
				for _, tr := range d.Traits {
					if tr.Accession <= 0 || tr.Name == "" {
						return nil, fmt.Errorf("dataset pht%06d: trait accession and name are required", d.Accession)
					}
				}
			}
		}
	}
	for i, h := range seed.HarmonizedTraits {
		if h.Name == "" || h.Version <= 0 {
			return nil, fmt.Errorf("harmonized trait %d: name and version are required", i)
		}
	}
	for i, tag := range seed.Tags {
		if tag.Title == "" || tag.Description == "" {
			return nil, fmt.Errorf("tag %d: title and description are required", i)
		}
	}
	return &seed, nil
}

// connectWithRetry waits out a database that is still starting up.
func connectWithRetry(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	policy := retry.Policy{
		MaxAttempts:    10,
		InitialBackoff: time.Second,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Database not ready, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	return retry.Do(ctx, policy, retry.AlwaysRetry, func() (*pgxpool.Pool, error) {
		return database.Connect(ctx, databaseURL)
	})
}

func apply(ctx context.Context, pool *pgxpool.Pool, seed *seedFile) error {
	creator, err := ensureSeedUser(ctx, database.NewUserRepo(pool))
	if err != nil {
		return fmt.Errorf("failed to resolve seed user: %w", err)
	}

	if err := applyCatalog(ctx, pool, seed); err != nil {
		return err
	}
	if err := applyTags(ctx, database.NewTagRepo(pool), seed.Tags, creator.ID); err != nil {
		return err
	}
	return applyHomeContents(ctx, database.NewHomeContentRepo(pool), seed.HomeContents)
}

// ensureSeedUser resolves the system account that owns seeded tags, creating
// it on first run. The password hash is not a valid bcrypt hash, so nobody
// can sign in as it.
func ensureSeedUser(ctx context.Context, users *database.UserRepo) (*domain.User, error) {
	user, err := users.GetByEmail(ctx, seedUserEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user = &domain.User{
		Email:        seedUserEmail,
		Name:         seedUserName,
		PasswordHash: "!",
		IsStaff:      true,
	}
	err = users.Create(ctx, user)
	if errors.Is(err, domain.ErrEmailTaken) {
		// Another seed run got there first.
		return users.GetByEmail(ctx, seedUserEmail)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("Created seed user", "email", seedUserEmail)
	return user, nil
}

func applyCatalog(ctx context.Context, pool *pgxpool.Pool, seed *seedFile) error {
	studies := database.NewStudyRepo(pool)
	datasets := database.NewDatasetRepo(pool)
	traits := database.NewTraitRepo(pool)

	var studyCount, traitCount int
	for _, entry := range seed.Studies {
		if err := studies.Upsert(ctx, &domain.Study{Accession: entry.Accession, Name: entry.Name}); err != nil {
			return fmt.Errorf("failed to upsert study phs%06d: %w", entry.Accession, err)
		}
		studyCount++

		for _, v := range entry.Versions {
			version := &domain.StudyVersion{
				StudyAccession: entry.Accession,
				Version:        v.Version,
				ParticipantSet: v.ParticipantSet,
				IsDeprecated:   v.Deprecated,
			}
			if err := studies.UpsertVersion(ctx, version); err != nil {
				return fmt.Errorf("failed to upsert phs%06d v%d: %w", entry.Accession, v.Version, err)
			}

			for _, d := range v.Datasets {
				dataset := &domain.Dataset{
					Accession:      d.Accession,
					Version:        d.Version,
					StudyVersionID: version.ID,
					Name:           d.Name,
					Description:    d.Description,
					IsDeprecated:   d.Deprecated,
				}
				if err := datasets.Upsert(ctx, dataset); err != nil {
					return fmt.Errorf("failed to upsert dataset pht%06d: %w", d.Accession, err)
				}

				for _, tr := range d.Traits {
					trait := &domain.SourceTrait{
						Accession:        tr.Accession,
						Name:             tr.Name,
						Description:      tr.Description,
						DataType:         tr.DataType,
						Unit:             tr.Unit,
						DatasetAccession: d.Accession,
						IsDeprecated:     tr.Deprecated,
					}
					if err := traits.UpsertSource(ctx, trait); err != nil {
						return fmt.Errorf("failed to upsert trait phv%08d: %w", tr.Accession, err)
					}
					traitCount++
				}
			}
		}
	}

	var harmonizedCount int
	for _, h := range seed.HarmonizedTraits {
		trait := &domain.HarmonizedTrait{
			Name:        h.Name,
			FlavorName:  h.FlavorName,
			Version:     h.Version,
			Description: h.Description,
			DataType:    h.DataType,
			Unit:        h.Unit,
		}
		if err := traits.UpsertHarmonized(ctx, trait); err != nil {
			return fmt.Errorf("failed to upsert harmonized trait %q: %w", h.Name, err)
		}
		harmonizedCount++
	}

	slog.Info("Catalog seeded",
		"studies", studyCount, "source_traits", traitCount, "harmonized_traits", harmonizedCount)
	return nil
}

func applyTags(ctx context.Context, tags *database.TagRepo, entries []seedTag, creatorID uuid.UUID) error {
	var created, skipped int
	for _, entry := range entries {
		_, err := tags.GetByTitle(ctx, entry.Title)
		if err == nil {
			slog.Debug("Tag already present", "title", entry.Title)
			skipped++
			continue
		}
		if !errors.Is(err, domain.ErrTagNotFound) {
			return fmt.Errorf("failed to look up tag %q: %w", entry.Title, err)
		}

		tag := &domain.Tag{
			Title:        entry.Title,
			Description:  entry.Description,
			Instructions: entry.Instructions,
			CreatorID:    creatorID,
		}
		err = tags.Create(ctx, tag)
		switch {
		case errors.Is(err, domain.ErrTagExists):
			skipped++
		case err != nil:
			return fmt.Errorf("failed to create tag %q: %w", entry.Title, err)
		default:
			slog.Debug("Created tag", "title", entry.Title)
			created++
		}
	}
	slog.Info("Tags seeded", "created", created, "skipped", skipped)
	return nil
}

func applyHomeContents(ctx context.Context, home *database.HomeContentRepo, entries []seedHomeContent) error {
	existing, err := home.ListOrdered(ctx)
	if err != nil {
		return fmt.Errorf("failed to list home contents: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, content := range existing {
		present[content.Title] = true
	}

	var created, skipped int
	for _, entry := range entries {
		if present[entry.Title] {
			skipped++
			continue
		}
		content := &domain.HomeContent{
			Title:    entry.Title,
			Body:     entry.Body,
			Position: entry.Position,
		}
		if err := home.Create(ctx, content); err != nil {
			return fmt.Errorf("failed to create home content %q: %w", entry.Title, err)
		}
		created++
	}
	slog.Info("Home contents seeded", "created", created, "skipped", skipped)

	return nil
}
