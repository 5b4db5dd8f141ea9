package keyword

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

// DomainRule assigns Domain when any keyword occurs in the filename.
type DomainRule struct {
	Domain   string   `yaml:"domain"`
	Keywords []string `yaml:"keywords"`
}

// TagRule contributes Tags when Keyword occurs in the filename.
type TagRule struct {
	Keyword string   `yaml:"keyword"`
	Tags    []string `yaml:"tags"`
}

// Rules holds the ordered domain table (first match wins) and the tag table.
type Rules struct {
	Domains []DomainRule `yaml:"domains"`
	Tags    []TagRule    `yaml:"tags"`
}

func DefaultRules() Rules {
	return Rules{
		Domains: []DomainRule{
			{Domain: domain.DomainSWOTModels, Keywords: []string{"swot", "fofa", "estrateg", "strategic"}},
			{Domain: domain.DomainOperationalChecklist, Keywords: []string{"checklist", "check-list", "check_list"}},
			{Domain: domain.DomainServiceStandard, Keywords: []string{"atendimento", "customer service", "customer_service", "funil", "vendas", "sales"}},
			{Domain: domain.DomainPromotionsMarketing, Keywords: []string{"promo", "marketing", "podcast", "roteiro", "script"}},
			{Domain: domain.DomainComplianceReferences, Keywords: []string{"anp", "inmetro", "procon", "anvisa", "abnt"}},
		},
		Tags: []TagRule{
			{Keyword: "swot", Tags: []string{"swot", "strategy"}},
			{Keyword: "fofa", Tags: []string{"swot", "strategy"}},
			{Keyword: "estrateg", Tags: []string{"strategy"}},
			{Keyword: "planejamento", Tags: []string{"planning", "strategy"}},
			{Keyword: "checklist", Tags: []string{"checklist", "operations"}},
			{Keyword: "check-list", Tags: []string{"checklist", "operations"}},
			{Keyword: "check_list", Tags: []string{"checklist", "operations"}},
			{Keyword: "abertura", Tags: []string{"opening", "operations"}},
			{Keyword: "fechamento", Tags: []string{"closing", "operations"}},
			{Keyword: "atendimento", Tags: []string{"customer_service"}},
			{Keyword: "cliente", Tags: []string{"customer_service"}},
			{Keyword: "funil", Tags: []string{"sales", "sales_funnel"}},
			{Keyword: "vendas", Tags: []string{"sales"}},
			{Keyword: "promo", Tags: []string{"marketing", "promotions"}},
			{Keyword: "marketing", Tags: []string{"marketing"}},
			{Keyword: "podcast", Tags: []string{"marketing", "podcast"}},
			{Keyword: "roteiro", Tags: []string{"script"}},
			{Keyword: "script", Tags: []string{"script"}},
			{Keyword: "treinamento", Tags: []string{"training"}},
			{Keyword: "seguranca", Tags: []string{"safety"}},
			{Keyword: "anp", Tags: []string{"anp", "compliance"}},
			{Keyword: "inmetro", Tags: []string{"compliance", "inmetro"}},
			{Keyword: "procon", Tags: []string{"compliance", "consumer_protection"}},
			{Keyword: "anvisa", Tags: []string{"anvisa", "compliance"}},
		},
	}
}

// LoadRules reads a YAML rules file. Order of the domains list is significant.
func LoadRules(path string) (Rules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (r Rules) Validate() error {
	for i, rule := range r.Domains {
		if !domain.IsKnownDomain(rule.Domain) {
			return fmt.Errorf("domain rule %d: unknown domain %q", i, rule.Domain)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("domain rule %d (%s): no keywords", i, rule.Domain)
		}
		for _, kw := range rule.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("domain rule %d (%s): empty keyword", i, rule.Domain)
			}
		}
	}
	for i, rule := range r.Tags {
		if strings.TrimSpace(rule.Keyword) == "" {
			return fmt.Errorf("tag rule %d: empty keyword", i)
		}
		if len(rule.Tags) == 0 {
			return fmt.Errorf("tag rule %d (%s): no tags", i, rule.Keyword)
		}
	}
	return nil
}
