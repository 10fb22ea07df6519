// Package correct reclassifies columns whose declared storage type misrepresents
// their content: date strings stored as text, 0/1 flags stored as numbers, and
// yes/no style tokens stored as text.
package correct

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/KaramelBytes/tabloom/internal/logging"
	"github.com/KaramelBytes/tabloom/internal/table"
)

// Config controls the correction heuristics.
type Config struct {
	// Seed drives row sampling. Equal seeds give identical corrections.
	Seed int64
	// SampleFraction of rows inspected by the boolean rules; at least one row is sampled.
	SampleFraction float64
	// DateTimeThreshold is the parsed/non-missing ratio a text column must exceed
	// to be promoted to datetime.
	DateTimeThreshold float64
}

// DefaultConfig returns seed 42, a 5% sample and a 0.70 datetime threshold.
func DefaultConfig() Config {
	return Config{Seed: 42, SampleFraction: 0.05, DateTimeThreshold: 0.70}
}

// Change records one column conversion.
type Change struct {
	Column      string            `yaml:"column"`
	Rule        string            `yaml:"rule"`
	FromStorage table.StorageType `yaml:"from_storage"`
	ToStorage   table.StorageType `yaml:"to_storage"`
	From        table.Kind        `yaml:"from"`
	To          table.Kind        `yaml:"to"`
	// Dropped counts non-missing values that became missing.
	Dropped int `yaml:"dropped"`
}

// Corrector applies an ordered list of rules to each column. The first rule
// that converts a column wins.
type Corrector struct {
	cfg   Config
	rules []Rule
	log   *zap.Logger
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithLogger attaches a logger; conversions are logged at debug level.
func WithLogger(l *zap.Logger) Option { return func(c *Corrector) { c.log = logging.OrNop(l) } }

// WithRules replaces the default rule list.
func WithRules(rules ...Rule) Option { return func(c *Corrector) { c.rules = rules } }

// New returns a corrector using DefaultRules unless overridden.
func New(cfg Config, opts ...Option) *Corrector {
	c := &Corrector{cfg: cfg, rules: DefaultRules(), log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Correct returns a corrected copy of t. t is not modified.
func (c *Corrector) Correct(t *table.Table) *table.Table {
	out, _ := c.CorrectWithLog(t)
	return out
}

// CorrectWithLog is Correct plus the list of conversions performed, in column order.
func (c *Corrector) CorrectWithLog(t *table.Table) (*table.Table, []Change) {
	cols := make([]*table.Column, len(t.Columns))
	var changes []Change
	for i, col := range t.Columns {
		cols[i] = col.Clone()
		if col.NonMissing() == 0 {
			continue
		}
		env := &Env{cfg: c.cfg, rng: rand.New(rand.NewSource(c.cfg.Seed + int64(i)*7919))}
		for _, r := range c.rules {
			if !r.Applies(cols[i]) {
				continue
			}
			converted, ok := r.Convert(cols[i], env)
			if !ok {
				continue
			}
			ch := Change{
				Column:      col.Name,
				Rule:        r.Name,
				FromStorage: col.Storage,
				ToStorage:   converted.Storage,
				From:        col.Kind,
				To:          converted.Kind,
				Dropped:     col.NonMissing() - converted.NonMissing(),
			}
			c.log.Debug("column corrected",
				zap.String("column", ch.Column),
				zap.String("rule", ch.Rule),
				zap.String("from", string(ch.From)),
				zap.String("to", string(ch.To)),
				zap.Int("dropped", ch.Dropped))
			changes = append(changes, ch)
			cols[i] = converted
			break
		}
	}
	out, err := table.New(t.Name, cols...)
	if err != nil {
		// Names and lengths are preserved by every rule, so this cannot happen
		// for a valid input table.
		c.log.Error("corrected table invalid", zap.Error(err))
		return t.Clone(), nil
	}
	return out, changes
}

// Env carries per-column state shared by the rules: the config and a lazily
// drawn, seeded row sample.
type Env struct {
	cfg    Config
	rng    *rand.Rand
	sample []int
	drawn  bool
}

// Config returns the corrector settings.
func (e *Env) Config() Config { return e.cfg }

// Sample returns the sampled row indices of col's non-missing values. The sample
// is drawn once per column and reused by every rule.
func (e *Env) Sample(col *table.Column) []int {
	if e.drawn {
		return e.sample
	}
	e.drawn = true
	present := make([]int, 0, col.Len())
	for i, v := range col.Values {
		if !v.Missing {
			present = append(present, i)
		}
	}
	if len(present) == 0 {
		return nil
	}
	k := SampleSize(col.Len(), e.cfg.SampleFraction)
	if k > len(present) {
		k = len(present)
	}
	perm := e.rng.Perm(len(present))
	e.sample = make([]int, k)
	for j := 0; j < k; j++ {
		e.sample[j] = present[perm[j]]
	}
	return e.sample
}

// SampleSize is max(1, ceil(fraction*n)).
func SampleSize(n int, fraction float64) int {
	k := int(math.Ceil(fraction * float64(n)))
	if k < 1 {
		k = 1
	}
	return k
}
