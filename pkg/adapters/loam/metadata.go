package loam

import "github.com/aretw0/sideeye/pkg/domain"

// ItemMetadata is the frontmatter of an item document.
// It uses "mapstructure" tags to match the YAML keys authors write.
type ItemMetadata struct {
	// Number identifies the item. Defaults to the document name without extension.
	Number    string           `json:"number" mapstructure:"number"`
	Condition string           `json:"condition" mapstructure:"condition"`
	Labels    []string         `json:"labels" mapstructure:"labels"`
	Regions   []RegionMetadata `json:"regions" mapstructure:"regions"`
}

// RegionMetadata describes one region of the item text.
type RegionMetadata struct {
	Number int           `json:"number" mapstructure:"number"`
	Label  string        `json:"label" mapstructure:"label"`
	Start  PointMetadata `json:"start" mapstructure:"start"`
	End    PointMetadata `json:"end" mapstructure:"end"`
	Text   string        `json:"text" mapstructure:"text"`
}

type PointMetadata struct {
	Char int `json:"char" mapstructure:"char"`
	Line int `json:"line" mapstructure:"line"`
}

func (p PointMetadata) toDomain() domain.Point {
	return domain.NewPoint(p.Char, p.Line)
}

// toDomain converts the frontmatter into a domain item. Regions without an explicit
// number are numbered by position, starting at 1.
func (m ItemMetadata) toDomain(number string) *domain.Item {
	item := &domain.Item{
		Number:    number,
		Condition: m.Condition,
		Labels:    m.Labels,
	}
	if len(m.Regions) > 0 {
		item.Regions = make([]domain.Region, len(m.Regions))
	}
	for i, r := range m.Regions {
		n := r.Number
		if n == 0 {
			n = i + 1
		}
		item.Regions[i] = domain.Region{
			Number: n,
			Label:  r.Label,
			Start:  r.Start.toDomain(),
			End:    r.End.toDomain(),
			Text:   r.Text,
		}
	}
	return item
}
