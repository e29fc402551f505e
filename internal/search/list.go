package search

import "github.com/aicb-dev/aicb/internal/index"

// ListAll returns stored conversations newest first as Results, for the
// browse view's unfiltered state. The preview doubles as the snippet.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	sums, err := db.Conversations(opts.Topic, opts.Limit)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(sums))
	for _, s := range sums {
		results = append(results, Result{
			ConversationID: s.ID,
			Seq:            -1,
			StartedAt:      s.StartedAt,
			Topic:          s.Topic,
			Source:         s.Source,
			Preview:        s.Preview,
			Snippet:        s.Preview,
		})
	}
	return results, nil
}
