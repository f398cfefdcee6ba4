package categorize

import (
	"strings"

	"github.com/caselens/caselens/internal/config"
)

// WeaponCategory is the closed set of weapon labels derived from case text.
type WeaponCategory string

const (
	WeaponFirearm     WeaponCategory = "firearm"
	WeaponKnife       WeaponCategory = "knife"
	WeaponBluntObject WeaponCategory = "blunt_object"
	WeaponNone        WeaponCategory = "none"
	WeaponUnknown     WeaponCategory = "unknown"
	WeaponOther       WeaponCategory = "other"
)

// AllWeaponCategories lists every category in reporting order. Distribution
// outputs iterate this so zero-count categories are never omitted.
var AllWeaponCategories = []WeaponCategory{
	WeaponFirearm, WeaponKnife, WeaponBluntObject, WeaponNone, WeaponUnknown, WeaponOther,
}

// weaponRule is one step in the ordered first-match-wins rule list.
type weaponRule struct {
	category WeaponCategory
	keywords []string
}

type familyRule struct {
	family   string
	keywords []string
}

// Categorizer derives weapon category, serious-crime flag, and crime family
// from case text. It is built once from config and holds no mutable state:
// every method is a pure function of its inputs.
type Categorizer struct {
	negation          []string
	weaponRules       []weaponRule
	seriousCategories []string
	seriousKeywords   []string
	familyRules       []familyRule
}

// New builds a Categorizer from the configured rule lists. Rule order in the
// config is the precedence order; nothing is re-sorted here.
func New(rules config.Rules) *Categorizer {
	c := &Categorizer{
		negation:          lowerAll(rules.NegationKeywords),
		seriousCategories: lowerAll(rules.SeriousCategories),
		seriousKeywords:   lowerAll(rules.SeriousKeywords),
	}
	for _, r := range rules.WeaponRules {
		c.weaponRules = append(c.weaponRules, weaponRule{
			category: WeaponCategory(r.Category),
			keywords: lowerAll(r.Keywords),
		})
	}
	for _, r := range rules.CrimeFamilies {
		c.familyRules = append(c.familyRules, familyRule{
			family:   r.Family,
			keywords: lowerAll(r.Keywords),
		})
	}
	return c
}

// Weapon maps free case text to a weapon category. Negation keywords are
// checked before any weapon rule, then the ordered rule list applies with
// first match winning. Empty text and unmatched text both yield unknown.
func (c *Categorizer) Weapon(text string) WeaponCategory {
	norm := normalize(text)
	if norm == "" {
		return WeaponUnknown
	}
	for _, kw := range c.negation {
		if strings.Contains(norm, kw) {
			return WeaponNone
		}
	}
	for _, rule := range c.weaponRules {
		for _, kw := range rule.keywords {
			if strings.Contains(norm, kw) {
				return rule.category
			}
		}
	}
	return WeaponUnknown
}

// Serious reports whether a case is a serious crime, either because its
// category is in the serious set or because the text matches a serious
// keyword. The flag is monotonic: a single match makes the case serious and
// no rule retracts it.
func (c *Categorizer) Serious(category, text string) bool {
	cat := normalize(category)
	if cat != "" {
		for _, s := range c.seriousCategories {
			if strings.Contains(cat, s) {
				return true
			}
		}
	}
	norm := normalize(text)
	if norm == "" {
		return false
	}
	for _, kw := range c.seriousKeywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}

// Family maps case category and text to a broad crime family. The ordered
// family rules apply to category text first, then the free text; no match
// yields "Other".
func (c *Categorizer) Family(category, text string) string {
	combined := normalize(category + " " + text)
	if combined != "" {
		for _, rule := range c.familyRules {
			for _, kw := range rule.keywords {
				if strings.Contains(combined, kw) {
					return rule.family
				}
			}
		}
	}
	return "Other"
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
