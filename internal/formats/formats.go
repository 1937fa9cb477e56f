// Package formats describes bank CSV export layouts as configuration
// rather than code: each Spec maps column headers to semantic fields so a
// new institution only needs a YAML entry, not a new parser.
package formats

import (
	"fmt"
	"sort"
	"strings"

	"fjacquet/ledger-import/internal/dateutils"
	"fjacquet/ledger-import/internal/models"
)

// Columns maps semantic transaction fields to CSV header names. Date,
// Description and Amount are required; the rest are optional and carried
// through when present.
type Columns struct {
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
	Amount      string `yaml:"amount"`
	Account     string `yaml:"account"`
	Category    string `yaml:"category"`
	Type        string `yaml:"type"`
	Memo        string `yaml:"memo"`
}

// Spec describes one institution's CSV export layout.
type Spec struct {
	Name        string             `yaml:"name"`
	Delimiter   string             `yaml:"delimiter"`
	DateLayouts []string           `yaml:"date_layouts"`
	Columns     Columns            `yaml:"columns"`
	AccountType models.AccountType `yaml:"account_type"`
	Institution string             `yaml:"institution"`
}

// Comma returns the delimiter rune, defaulting to ','.
func (s Spec) Comma() rune {
	if s.Delimiter == "" {
		return ','
	}
	return []rune(s.Delimiter)[0]
}

// Layouts returns the date layouts to try, falling back to the common set.
func (s Spec) Layouts() []string {
	if len(s.DateLayouts) == 0 {
		return dateutils.CommonLayouts
	}
	return s.DateLayouts
}

// Account builds the account grouping key for a file imported under this
// spec.
func (s Spec) Account(label string) models.Account {
	return models.Account{
		Label:       label,
		Type:        s.AccountType,
		Institution: s.Institution,
	}
}

// Validate checks that the spec is usable.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("format spec has no name")
	}
	if s.Columns.Date == "" || s.Columns.Description == "" || s.Columns.Amount == "" {
		return fmt.Errorf("format %q must map date, description and amount columns", s.Name)
	}
	return nil
}

// Chase is the built-in spec for Chase credit card exports, the layout
// the original data set was exported in.
func Chase() Spec {
	return Spec{
		Name:        "chase",
		DateLayouts: []string{dateutils.DateLayoutUS, dateutils.DateLayoutUSShort},
		Columns: Columns{
			Date:        "Transaction Date",
			Description: "Description",
			Amount:      "Amount",
			Category:    "Category",
			Type:        "Type",
			Memo:        "Memo",
		},
		AccountType: models.AccountTypeCreditCard,
		Institution: "Chase",
	}
}

// Registry resolves format specs by name.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry returns a registry seeded with the built-in specs.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]Spec)}
	r.add(Chase())
	return r
}

func (r *Registry) add(s Spec) {
	r.specs[strings.ToLower(s.Name)] = s
}

// Register adds or replaces a spec after validating it.
func (r *Registry) Register(s Spec) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.add(s)
	return nil
}

// Get resolves a spec by name. Unknown names list what is available.
func (r *Registry) Get(name string) (Spec, error) {
	s, ok := r.specs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Spec{}, fmt.Errorf("unknown format %q (known formats: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	return s, nil
}

// Names returns the registered format names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
