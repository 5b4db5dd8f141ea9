package domain

const (
	DomainGeneral              = "general"
	DomainSWOTModels           = "swot_models"
	DomainOperationalChecklist = "operational_checklists"
	DomainServiceStandard      = "service_standard"
	DomainPromotionsMarketing  = "promotions_marketing"
	DomainComplianceReferences = "compliance_references"
)

// KnownDomains is the closed set a classifier may return.
var KnownDomains = []string{
	DomainSWOTModels,
	DomainOperationalChecklist,
	DomainServiceStandard,
	DomainPromotionsMarketing,
	DomainComplianceReferences,
	DomainGeneral,
}

func IsKnownDomain(d string) bool {
	for _, known := range KnownDomains {
		if known == d {
			return true
		}
	}
	return false
}

type Classification struct {
	Domain string   `json:"domain"`
	Tags   []string `json:"tags"`
}

type ClassificationMetadata struct {
	Domain    string     `json:"domain"`
	Tags      []string   `json:"tags"`
	Priority  int        `json:"priority"`
	Parser    ParserKind `json:"parser"`
	Ext       string     `json:"extension"`
	Filename  string     `json:"filename"`
	SizeBytes int64      `json:"size_bytes"`
}
