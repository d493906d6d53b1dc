package domain

// SeedStatus is what happened to one record of a seed file.
type SeedStatus string

const (
	SeedImported SeedStatus = "imported"
	SeedExisting SeedStatus = "exists"
	SeedSkipped  SeedStatus = "skipped"
	SeedFailed   SeedStatus = "failed"
)

// SeedOutcome reports one record of a seed file. Code is zero when the
// record carried no usable identifier.
type SeedOutcome struct {
	Code   ProductCode `json:"code,omitempty" yaml:"code,omitempty"`
	Name   string      `json:"name,omitempty" yaml:"name,omitempty"`
	Status SeedStatus  `json:"status" yaml:"status"`
	Error  string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// SeedReport is the outcome of loading a local seed file. Unlike an import,
// seeding never touches products that are already stored.
type SeedReport struct {
	Imported int           `json:"imported" yaml:"imported"`
	Existing int           `json:"existing" yaml:"existing"`
	Skipped  int           `json:"skipped" yaml:"skipped"`
	Failed   int           `json:"failed" yaml:"failed"`
	Outcomes []SeedOutcome `json:"outcomes" yaml:"outcomes"`
}

// Add records one outcome and updates the matching counter.
func (r *SeedReport) Add(o SeedOutcome) {
	switch o.Status {
	case SeedImported:
		r.Imported++
	case SeedExisting:
		r.Existing++
	case SeedSkipped:
		r.Skipped++
	case SeedFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}
