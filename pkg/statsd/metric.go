package statsd

import (
	"sort"
	"strings"

	"github.com/goto/salt/log"
)

// Metric is a statsd metric being built. A nil *Metric is valid and
// drops everything.
type Metric struct {
	logger        log.Logger
	name          string
	rate          float64
	tags          map[string]string
	withInfluxTag bool
	publishFunc   func(name string, tags []string, rate float64) error
}

func (m *Metric) Success() *Metric {
	return m.Tag("success", "true")
}

// Failure tags the metric as failed. The error is only used to pick the
// tag; its message is not published.
func (m *Metric) Failure(err error) *Metric {
	if err == nil {
		return m.Success()
	}
	return m.Tag("success", "false")
}

func (m *Metric) Tag(key string, val string) *Metric {
	if m == nil {
		return nil
	}

	if m.tags == nil {
		m.tags = map[string]string{}
	}
	m.tags[key] = val
	return m
}

// Publish sends the metric in the background. Intended to be used with
// defer.
func (m *Metric) Publish() {
	if m == nil {
		return
	}

	name, tags := m.name, m.sortedTags()
	var ddTags []string
	if m.withInfluxTag {
		// name,key1=val1,key2=val2
		var b strings.Builder
		b.WriteString(name)
		for _, kv := range tags {
			b.WriteString("," + kv[0] + "=" + kv[1])
		}
		name = b.String()
	} else {
		ddTags = make([]string, 0, len(tags))
		for _, kv := range tags {
			ddTags = append(ddTags, kv[0]+":"+kv[1])
		}
	}

	go func() {
		if err := m.publishFunc(name, ddTags, m.rate); err != nil {
			m.logger.Warn("failed to publish metric", "name", name, "err", err)
		}
	}()
}

func (m *Metric) sortedTags() [][2]string {
	keys := make([]string, 0, len(m.tags))
	for k := range m.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([][2]string, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, [2]string{k, m.tags[k]})
	}
	return tags
}
