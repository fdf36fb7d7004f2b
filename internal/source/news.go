package source

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// Headline templates; %s is filled with a fetch keyword. Roughly half
// describe events the analysis fallback treats as risk signals.
var newsTemplates = []string{
	"Major disruption reported in %s sector",
	"Port closure affects %s shipments worldwide",
	"Severe delay expected in %s deliveries this quarter",
	"Analysts optimistic about %s demand recovery",
	"New trade agreement boosts %s exports",
	"%s prices stabilize after volatile month",
	"Shortage of %s raises concerns among manufacturers",
	"Crisis talks continue over %s supply bottlenecks",
}

// NewsConnector synthesizes headline records for a keyword list.
type NewsConnector struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewNewsConnector(rng *rand.Rand) *NewsConnector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &NewsConnector{rng: rng, now: time.Now}
}

func (c *NewsConnector) Initialize(_ context.Context) error { return nil }

func (c *NewsConnector) Type() models.SourceType { return models.SourceNews }

func (c *NewsConnector) Available(_ context.Context) bool { return true }

func (c *NewsConnector) Fetch(_ context.Context, params Params) ([]models.SignalRecord, error) {
	keywords := params.Keywords
	if len(keywords) == 0 {
		keywords = []string{"supply chain", "logistics"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]models.SignalRecord, 0, len(keywords))
	for _, kw := range keywords {
		tpl := newsTemplates[c.rng.Intn(len(newsTemplates))]
		title := fmt.Sprintf(tpl, kw)
		records = append(records, models.SignalRecord{
			SourceType: models.SourceNews,
			CapturedAt: c.now().UTC(),
			Payload: map[string]any{
				"title":       title,
				"description": fmt.Sprintf("Industry coverage relating to %s.", kw),
				"source":      "wire",
				"publishedAt": c.now().UTC().Format(time.RFC3339),
			},
		})
	}
	return records, nil
}

var _ Connector = (*NewsConnector)(nil)
