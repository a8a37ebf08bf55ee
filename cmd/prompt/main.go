package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/internal/dataset"
	"github.com/tensorplex-labs/prompting/internal/tasks"
	"github.com/tensorplex-labs/prompting/internal/utils/logger"
)

func main() {
	kindName := flag.String("kind", "summarization", "task kind: summarization, question-generation or question-answer")
	text := flag.String("text", "", "base text; a dataset passage is sampled when empty")
	index := flag.Int("index", 0, "followup/answer index used in the task name")
	seed := flag.Uint64("seed", 0, "seed for criteria and passage sampling; 0 picks a random seed")
	logger.Init()

	kind, err := tasks.ParseKind(*kindName)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid kind")
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewPCG(*seed, *seed))
	}

	baseText := *text
	if baseText == "" {
		ds, err := dataset.New(rng)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load dataset")
		}
		passage := ds.Context()
		log.Debug().Str("title", passage.Title).Msg("sampled passage")
		baseText = passage.Text
	}

	task, err := tasks.New(kind, rng, baseText, *index)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build task")
	}
	prompt, err := task.ComposePrompt()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compose prompt")
	}

	log.Info().Str("task", task.TaskName).Str("type", task.TaskType()).Msg("composed prompt")
	if _, err := fmt.Fprintln(os.Stdout, prompt); err != nil {
		log.Fatal().Err(err).Msg("failed to write prompt")
	}
}
