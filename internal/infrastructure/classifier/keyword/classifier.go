// Package keyword classifies documents by case-insensitive keyword matches on the filename.
package keyword

import (
	"sort"
	"strings"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

type Classifier struct {
	rules Rules
}

func NewClassifier(rules Rules) *Classifier {
	lowered := Rules{
		Domains: make([]DomainRule, 0, len(rules.Domains)),
		Tags:    make([]TagRule, 0, len(rules.Tags)),
	}
	for _, rule := range rules.Domains {
		lowered.Domains = append(lowered.Domains, DomainRule{Domain: rule.Domain, Keywords: lowerAll(rule.Keywords)})
	}
	for _, rule := range rules.Tags {
		lowered.Tags = append(lowered.Tags, TagRule{Keyword: strings.ToLower(rule.Keyword), Tags: rule.Tags})
	}
	return &Classifier{rules: lowered}
}

func (c *Classifier) Classify(filename string) domain.Classification {
	name := strings.ToLower(filename)
	return domain.Classification{
		Domain: c.domainFor(name),
		Tags:   c.tagsFor(name),
	}
}

func (c *Classifier) domainFor(name string) string {
	for _, rule := range c.rules.Domains {
		for _, kw := range rule.Keywords {
			if strings.Contains(name, kw) {
				return rule.Domain
			}
		}
	}
	return domain.DomainGeneral
}

func (c *Classifier) tagsFor(name string) []string {
	seen := make(map[string]struct{})
	for _, rule := range c.rules.Tags {
		if !strings.Contains(name, rule.Keyword) {
			continue
		}
		for _, tag := range rule.Tags {
			seen[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
