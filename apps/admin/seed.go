package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/volatiletech/null/v8"
	"gopkg.in/yaml.v3"

	"github.com/sprakportal/backend/core"
	"github.com/sprakportal/backend/core/vocab"
	sqlxrepos "github.com/sprakportal/backend/storage/database/sqlx"
)

// seedWord mirrors one entry of the vocabulary seed file.
type seedWord struct {
	Word        string   `yaml:"word"`
	Translation string   `yaml:"translation"`
	WordClass   string   `yaml:"word_class"`
	Article     string   `yaml:"article"`
	Forms       []string `yaml:"forms"`
	Meaning     string   `yaml:"meaning"`
	Synonyms    []string `yaml:"synonyms"`
	Example     string   `yaml:"example"`
	Level       string   `yaml:"level"`
}

func newSeedCmd(conf *core.Config) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a vocabulary seed file, skipping words already present",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(conf)
			if err != nil {
				return err
			}
			defer db.Close()

			created, skipped, err := seedVocabulary(context.Background(), sqlxrepos.NewVocabRepository(db), file)
			if err != nil {
				return err
			}
			cmd.Printf("seeded %d words, skipped %d existing\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "vocabulary.yaml", "Path to the vocabulary seed file")
	return cmd
}

func seedVocabulary(ctx context.Context, repo vocab.Repository, file string) (created, skipped int, err error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return 0, 0, errors.Wrap(err, "reading seed file")
	}

	var entries []seedWord
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return 0, 0, errors.Wrap(err, "parsing seed file")
	}

	for i, entry := range entries {
		word := core.CleanString(entry.Word)
		wordClass := core.CleanString(entry.WordClass, true /* lower */)
		if word == "" || entry.Translation == "" || wordClass == "" || !core.IsCEFRLevel(entry.Level) {
			return created, skipped, errors.Errorf("invalid entry #%d: %q", i+1, entry.Word)
		}

		if _, err := repo.GetWordByText(ctx, word, wordClass); err == nil {
			skipped++
			continue
		} else if errors.Cause(err) != vocab.ErrNotFound {
			return created, skipped, err
		}

		now := time.Now().UTC()
		w := vocab.Word{
			Word:        word,
			Translation: entry.Translation,
			WordClass:   wordClass,
			Forms:       entry.Forms,
			Meaning:     entry.Meaning,
			Synonyms:    entry.Synonyms,
			Example:     entry.Example,
			Level:       entry.Level,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if entry.Article != "" {
			w.Article = null.StringFrom(entry.Article)
		}
		if _, err := repo.CreateWord(ctx, w); err != nil {
			return created, skipped, err
		}
		created++
	}
	return created, skipped, nil
}
