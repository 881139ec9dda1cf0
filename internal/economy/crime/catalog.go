package crime

import "github.com/sahilm/fuzzy"

// SkillTrack is the skill map key the underworld reads and advances. It is
// separate from the job tracks; honest work never trains it.
const SkillTrack = "crime"

type Crime struct {
	ID            string
	BaseSuccess   float64
	MinSteal      int64
	MaxSteal      int64
	JailHours     int
	SkillRequired int
}

func DefaultCatalog() []Crime {
	return []Crime{
		{ID: "pickpocket", BaseSuccess: 0.40, MinSteal: 100, MaxSteal: 500, JailHours: 2, SkillRequired: 0},
		{ID: "robbery", BaseSuccess: 0.25, MinSteal: 500, MaxSteal: 3_000, JailHours: 6, SkillRequired: 3},
		{ID: "tax_evasion", BaseSuccess: 0.35, MinSteal: 5_000, MaxSteal: 30_000, JailHours: 72, SkillRequired: 6},
		{ID: "heist", BaseSuccess: 0.15, MinSteal: 5_000, MaxSteal: 20_000, JailHours: 24, SkillRequired: 7},
		{ID: "embezzlement", BaseSuccess: 0.20, MinSteal: 10_000, MaxSteal: 50_000, JailHours: 48, SkillRequired: 8},
	}
}

type Catalog struct {
	crimes []Crime
	byID   map[string]*Crime
	names  []string
}

func NewCatalog(crimes []Crime) *Catalog {
	if crimes == nil {
		crimes = DefaultCatalog()
	}
	c := &Catalog{
		crimes: crimes,
		byID:   make(map[string]*Crime, len(crimes)),
	}
	for i := range c.crimes {
		c.byID[c.crimes[i].ID] = &c.crimes[i]
		c.names = append(c.names, c.crimes[i].ID)
	}
	return c
}

func (c *Catalog) Crimes() []Crime {
	return c.crimes
}

func (c *Catalog) Get(id string) (Crime, bool) {
	cr, ok := c.byID[id]
	if !ok {
		return Crime{}, false
	}
	return *cr, true
}

func (c *Catalog) Resolve(input string) (Crime, bool) {
	if cr, ok := c.Get(input); ok {
		return cr, true
	}
	matches := fuzzy.Find(input, c.names)
	if len(matches) == 0 {
		return Crime{}, false
	}
	return c.Get(matches[0].Str)
}
