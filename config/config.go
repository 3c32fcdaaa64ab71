// Package config provides configuration loading and management for formroute.
// The defaults reproduce the production bilingual (Romanian/English) form
// vocabulary: primary raw field names, fuzzy-match pattern sets, category
// exclusion literals, and the template catalog.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/formroute/semantic"
)

// Config represents the complete formroute configuration.
type Config struct {
	Mapping MappingConfig `yaml:"mapping"`
	Mapper  MapperConfig  `yaml:"mapper"`
	Rules   RulesConfig   `yaml:"rules"`
}

// MappingConfig drives the field resolution pipeline.
type MappingConfig struct {
	// Primary maps each semantic key to the exact raw field name used by
	// the current form revision. Checked before any fuzzy matching.
	Primary map[semantic.Key]string `yaml:"primary"`

	// Patterns lists the reference phrases used for fuzzy matching when
	// the primary name is absent from a record.
	Patterns map[semantic.Key][]string `yaml:"patterns"`

	// Legacy is the deprecated flat raw-name table kept for backward
	// compatibility with pre-revision exports. Consulted after fuzzy
	// matching fails.
	Legacy map[semantic.Key]string `yaml:"legacy"`

	// FuzzyThreshold is the minimum similarity score for a fuzzy match to
	// be trusted. The boundary is inclusive.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	// SchemaAwareCache keys the resolved-mapping cache by the record's
	// schema fingerprint, so batches mixing form revisions cannot reuse a
	// mapping cached from a different schema.
	SchemaAwareCache bool `yaml:"schema_aware_cache"`
}

// MapperConfig configures the external natural-language mapping fallback.
type MapperConfig struct {
	// Enabled gates the external fallback entirely. When false the
	// resolver never leaves the synchronous pipeline.
	Enabled bool `yaml:"enabled"`

	// Provider selects the API dialect ("openai" or "ollama").
	Provider string `yaml:"provider"`

	// Model is the model identifier sent to the provider.
	Model string `yaml:"model"`

	// BaseURL overrides the provider's default endpoint. Empty uses the
	// provider default.
	BaseURL string `yaml:"base_url"`

	// Temperature controls sampling randomness.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens limits response length. 0 uses the provider default.
	MaxTokens int `yaml:"max_tokens"`

	// ConfidenceThreshold is the minimum confidence required before a
	// mapper result obtained by containment (rather than exact membership)
	// is trusted.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// CacheTTL bounds how long a mapper result is reused for an identical
	// (schema, key) lookup.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// MinInterval is the minimum spacing between mapper API calls.
	MinInterval time.Duration `yaml:"min_interval"`

	// MaxRetries bounds retry attempts on transient mapper errors.
	MaxRetries int `yaml:"max_retries"`
}

// RulesConfig holds the template catalog and category business literals.
type RulesConfig struct {
	Exclusions ExclusionConfig   `yaml:"exclusions"`
	Templates  TemplateConfig    `yaml:"templates"`
	Locations  map[string]string `yaml:"locations"`
	Courses    map[string]string `yaml:"courses"`
}

// ExclusionConfig lists, per category, the literal answers that suppress
// assignment outright. Matching is exact string equality.
type ExclusionConfig struct {
	Mission      []string `yaml:"mission"`
	PrayerGroups []string `yaml:"prayer_groups"`
	Camp         []string `yaml:"camp"`
	Courses      []string `yaml:"courses"`
}

// TemplateConfig maps each assignment slot to its template identifier.
type TemplateConfig struct {
	MissionShortTerm         string `yaml:"mission_short_term"`
	PrayerMissionary         string `yaml:"prayer_missionary"`
	PrayerEthnic             string `yaml:"prayer_ethnic"`
	CampInfo                 string `yaml:"camp_info"`
	CourseKairos             string `yaml:"course_kairos"`
	CourseKairosCoordinator  string `yaml:"course_kairos_coordinator"`
	CourseMobilize           string `yaml:"course_mobilize"`
	CourseEmpowered          string `yaml:"course_empowered"`
	DonationInfo             string `yaml:"donation_info"`
	VolunteerInfo            string `yaml:"volunteer_info"`
	RomaniaPrayerGroupJoin   string `yaml:"romania_prayer_group_join"`
	RomaniaPrayerGroupStart  string `yaml:"romania_prayer_group_start"`
	DiasporaPrayerGroupJoin  string `yaml:"diaspora_prayer_group_join"`
	DiasporaPrayerGroupStart string `yaml:"diaspora_prayer_group_start"`
}

// DefaultConfig returns a Config carrying the production vocabulary.
func DefaultConfig() *Config {
	templates := TemplateConfig{
		MissionShortTerm:         "Info Misiune pe termen scurt APME",
		PrayerMissionary:         "Info Rugăciune Misionar APME",
		PrayerEthnic:             "Info Rugăciune Popor Neatins APME",
		CampInfo:                 "Info Tabere Misiune APME",
		CourseKairos:             "Info despre cursul Kairos",
		CourseKairosCoordinator:  "Info despre cursul Kairos",
		CourseMobilize:           "Info despre cursul Mobilizează",
		CourseEmpowered:          "Info despre cursul Mobilizează",
		DonationInfo:             "Info Donații APME",
		VolunteerInfo:            "Info Voluntariat APME",
		RomaniaPrayerGroupJoin:   "Info despre grupuri zonale de rugăciune Romania",
		RomaniaPrayerGroupStart:  "Info despre începerea unui grup zonal de rugăciune Romania",
		DiasporaPrayerGroupJoin:  "Info despre grupuri zonale de rugăciune Diaspora",
		DiasporaPrayerGroupStart: "Info despre începerea unui grup zonal de rugăciune Diaspora",
	}

	return &Config{
		Mapping: MappingConfig{
			Primary:          defaultPrimary(),
			Patterns:         defaultPatterns(),
			Legacy:           map[semantic.Key]string{},
			FuzzyThreshold:   0.7,
			SchemaAwareCache: true,
		},
		Mapper: MapperConfig{
			Enabled:             false,
			Provider:            "openai",
			Model:               "gpt-4o",
			BaseURL:             "",
			Temperature:         0,
			MaxTokens:           256,
			ConfidenceThreshold: 0.8,
			CacheTTL:            24 * time.Hour,
			MinInterval:         time.Second,
			MaxRetries:          2,
		},
		Rules: RulesConfig{
			Exclusions: ExclusionConfig{
				Mission: []string{
					"Nu acum, poate mai târziu",
					"NU",
					"Nu am resurse financiare",
				},
				PrayerGroups: []string{
					"Nu sunt interesat/ă",
					"Vreau să fiu adăugat pe grupul de misiune de Whatsapp/Signal",
				},
				Camp: []string{
					"Nu sunt interesat/ă",
				},
				Courses: []string{
					"Nu sunt interesat/ă",
				},
			},
			Templates: templates,
			Locations: map[string]string{
				"În România":  "Romania",
				"În Diaspora": "Diaspora",
			},
			Courses: map[string]string{
				"Cursul Kairos":                   templates.CourseKairos,
				"Cursul Mobilizează":              templates.CourseMobilize,
				"Împuternicit pentru a influența": templates.CourseEmpowered,
				"Curs de coordonatori Kairos":     templates.CourseKairosCoordinator,
			},
		},
	}
}

// Validate checks that the configuration is complete enough to run. Missing
// mapping or template entries are deployment errors and surface here rather
// than per record.
func (c *Config) Validate() error {
	if c.Mapping.FuzzyThreshold <= 0 || c.Mapping.FuzzyThreshold > 1 {
		return fmt.Errorf("mapping.fuzzy_threshold must be in (0,1], got %v", c.Mapping.FuzzyThreshold)
	}
	if len(c.Mapping.Primary) == 0 {
		return fmt.Errorf("mapping.primary is empty")
	}
	if len(c.Mapping.Patterns) == 0 {
		return fmt.Errorf("mapping.patterns is empty")
	}

	for _, key := range semantic.ImportantKeys() {
		if c.Mapping.Primary[key] == "" {
			return fmt.Errorf("mapping.primary missing entry for %s", key)
		}
		if len(c.Mapping.Patterns[key]) == 0 {
			return fmt.Errorf("mapping.patterns missing entry for %s", key)
		}
	}

	if c.Mapper.Enabled {
		if c.Mapper.Provider == "" {
			return fmt.Errorf("mapper.provider is required when mapper is enabled")
		}
		if c.Mapper.Model == "" {
			return fmt.Errorf("mapper.model is required when mapper is enabled")
		}
		if c.Mapper.ConfidenceThreshold <= 0 || c.Mapper.ConfidenceThreshold > 1 {
			return fmt.Errorf("mapper.confidence_threshold must be in (0,1], got %v", c.Mapper.ConfidenceThreshold)
		}
	}

	t := c.Rules.Templates
	named := map[string]string{
		"templates.mission_short_term": t.MissionShortTerm,
		"templates.prayer_missionary":  t.PrayerMissionary,
		"templates.prayer_ethnic":      t.PrayerEthnic,
		"templates.camp_info":          t.CampInfo,
		"templates.donation_info":      t.DonationInfo,
		"templates.volunteer_info":     t.VolunteerInfo,
	}
	for name, value := range named {
		if value == "" {
			return fmt.Errorf("rules.%s is required", name)
		}
	}

	if len(c.Rules.Locations) == 0 {
		return fmt.Errorf("rules.locations is empty")
	}
	if len(c.Rules.Courses) == 0 {
		return fmt.Errorf("rules.courses is empty")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file, layered over defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Mapping
	for key, name := range other.Mapping.Primary {
		c.Mapping.Primary[key] = name
	}
	for key, patterns := range other.Mapping.Patterns {
		c.Mapping.Patterns[key] = patterns
	}
	for key, name := range other.Mapping.Legacy {
		c.Mapping.Legacy[key] = name
	}
	if other.Mapping.FuzzyThreshold != 0 {
		c.Mapping.FuzzyThreshold = other.Mapping.FuzzyThreshold
	}

	// Mapper
	if other.Mapper.Enabled {
		c.Mapper.Enabled = true
	}
	if other.Mapper.Provider != "" {
		c.Mapper.Provider = other.Mapper.Provider
	}
	if other.Mapper.Model != "" {
		c.Mapper.Model = other.Mapper.Model
	}
	if other.Mapper.BaseURL != "" {
		c.Mapper.BaseURL = other.Mapper.BaseURL
	}
	if other.Mapper.MaxTokens != 0 {
		c.Mapper.MaxTokens = other.Mapper.MaxTokens
	}
	if other.Mapper.ConfidenceThreshold != 0 {
		c.Mapper.ConfidenceThreshold = other.Mapper.ConfidenceThreshold
	}
	if other.Mapper.CacheTTL != 0 {
		c.Mapper.CacheTTL = other.Mapper.CacheTTL
	}
	if other.Mapper.MinInterval != 0 {
		c.Mapper.MinInterval = other.Mapper.MinInterval
	}
	if other.Mapper.MaxRetries != 0 {
		c.Mapper.MaxRetries = other.Mapper.MaxRetries
	}

	// Rules
	if len(other.Rules.Exclusions.Mission) > 0 {
		c.Rules.Exclusions.Mission = other.Rules.Exclusions.Mission
	}
	if len(other.Rules.Exclusions.PrayerGroups) > 0 {
		c.Rules.Exclusions.PrayerGroups = other.Rules.Exclusions.PrayerGroups
	}
	if len(other.Rules.Exclusions.Camp) > 0 {
		c.Rules.Exclusions.Camp = other.Rules.Exclusions.Camp
	}
	if len(other.Rules.Exclusions.Courses) > 0 {
		c.Rules.Exclusions.Courses = other.Rules.Exclusions.Courses
	}
	for raw, canonical := range other.Rules.Locations {
		c.Rules.Locations[raw] = canonical
	}
	for course, template := range other.Rules.Courses {
		c.Rules.Courses[course] = template
	}
	mergeTemplates(&c.Rules.Templates, &other.Rules.Templates)
}

func mergeTemplates(dst, src *TemplateConfig) {
	if src.MissionShortTerm != "" {
		dst.MissionShortTerm = src.MissionShortTerm
	}
	if src.PrayerMissionary != "" {
		dst.PrayerMissionary = src.PrayerMissionary
	}
	if src.PrayerEthnic != "" {
		dst.PrayerEthnic = src.PrayerEthnic
	}
	if src.CampInfo != "" {
		dst.CampInfo = src.CampInfo
	}
	if src.CourseKairos != "" {
		dst.CourseKairos = src.CourseKairos
	}
	if src.CourseKairosCoordinator != "" {
		dst.CourseKairosCoordinator = src.CourseKairosCoordinator
	}
	if src.CourseMobilize != "" {
		dst.CourseMobilize = src.CourseMobilize
	}
	if src.CourseEmpowered != "" {
		dst.CourseEmpowered = src.CourseEmpowered
	}
	if src.DonationInfo != "" {
		dst.DonationInfo = src.DonationInfo
	}
	if src.VolunteerInfo != "" {
		dst.VolunteerInfo = src.VolunteerInfo
	}
	if src.RomaniaPrayerGroupJoin != "" {
		dst.RomaniaPrayerGroupJoin = src.RomaniaPrayerGroupJoin
	}
	if src.RomaniaPrayerGroupStart != "" {
		dst.RomaniaPrayerGroupStart = src.RomaniaPrayerGroupStart
	}
	if src.DiasporaPrayerGroupJoin != "" {
		dst.DiasporaPrayerGroupJoin = src.DiasporaPrayerGroupJoin
	}
	if src.DiasporaPrayerGroupStart != "" {
		dst.DiasporaPrayerGroupStart = src.DiasporaPrayerGroupStart
	}
}
