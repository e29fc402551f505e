package transcript

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aicb-dev/aicb/internal/model"
)

// Batch applies a Parser to an ordered collection of raw transcripts.
//
// In lenient mode (the default) a malformed item is logged with its index
// and skipped; the result holds the surviving conversations in input
// order, with no placeholder for failures. In strict mode the first
// failure, by input order, aborts the batch.
type Batch struct {
	Parser *Parser
	Strict bool
	// Workers > 1 fans parsing out over that many goroutines. Each parse
	// is a pure function of its input, so the only coordination needed is
	// writing into per-index slots; output order stays input order.
	Workers int
	Logger  *zap.Logger
}

// ParseAll parses every transcript in texts, in order.
func (b *Batch) ParseAll(texts []string) ([]model.Conversation, error) {
	if b.Workers > 1 {
		return b.parseParallel(texts)
	}

	log := b.logger()
	out := make([]model.Conversation, 0, len(texts))
	for i, text := range texts {
		conv, err := b.Parser.Parse(text)
		if err != nil {
			if b.Strict {
				return nil, fmt.Errorf("transcript %d: %w", i, err)
			}
			log.Error("skipping malformed transcript",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		out = append(out, *conv)
	}
	return out, nil
}

func (b *Batch) parseParallel(texts []string) ([]model.Conversation, error) {
	convs := make([]*model.Conversation, len(texts))
	errs := make([]error, len(texts))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				convs[i], errs[i] = b.Parser.Parse(texts[i])
			}
		}()
	}
	for i := range texts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	log := b.logger()
	out := make([]model.Conversation, 0, len(texts))
	for i := range texts {
		if errs[i] != nil {
			if b.Strict {
				return nil, fmt.Errorf("transcript %d: %w", i, errs[i])
			}
			log.Error("skipping malformed transcript",
				zap.Int("index", i),
				zap.Error(errs[i]))
			continue
		}
		out = append(out, *convs[i])
	}
	return out, nil
}

func (b *Batch) logger() *zap.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return zap.NewNop()
}
