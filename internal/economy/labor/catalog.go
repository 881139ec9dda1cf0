package labor

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// Job tracks. Skill earned on one track carries across jobs on the same
// track but not to the others.
const (
	TrackMenial       = "menial"
	TrackService      = "service"
	TrackTrade        = "trade"
	TrackProfessional = "professional"
	TrackExecutive    = "executive"
)

type Job struct {
	ID               string
	Track            string
	BaseSalary       int64
	SkillRequired    int
	DemandElasticity float64
	AutomationRisk   float64
	Union            bool
}

// DefaultCatalog is the standard job ladder, ordered by base salary.
func DefaultCatalog() []Job {
	return []Job{
		{ID: "beggar", Track: TrackMenial, BaseSalary: 200, SkillRequired: 0, DemandElasticity: 0.1, AutomationRisk: 0.05},
		{ID: "street_cleaner", Track: TrackMenial, BaseSalary: 500, SkillRequired: 0, DemandElasticity: 0.2, AutomationRisk: 0.6, Union: true},
		{ID: "laborer", Track: TrackMenial, BaseSalary: 800, SkillRequired: 0, DemandElasticity: 0.2, AutomationRisk: 0.7, Union: true},
		{ID: "janitor", Track: TrackMenial, BaseSalary: 1200, SkillRequired: 1, DemandElasticity: 0.3, AutomationRisk: 0.6},
		{ID: "delivery_driver", Track: TrackService, BaseSalary: 1400, SkillRequired: 1, DemandElasticity: 0.5, AutomationRisk: 0.8},
		{ID: "cashier", Track: TrackService, BaseSalary: 1600, SkillRequired: 1, DemandElasticity: 0.4, AutomationRisk: 0.7},
		{ID: "waiter", Track: TrackService, BaseSalary: 1700, SkillRequired: 2, DemandElasticity: 0.5, AutomationRisk: 0.5},
		{ID: "factory_worker", Track: TrackMenial, BaseSalary: 2200, SkillRequired: 2, DemandElasticity: 0.4, AutomationRisk: 0.8, Union: true},
		{ID: "barista", Track: TrackService, BaseSalary: 2300, SkillRequired: 2, DemandElasticity: 0.5, AutomationRisk: 0.6},
		{ID: "cook", Track: TrackService, BaseSalary: 2800, SkillRequired: 3, DemandElasticity: 0.4, AutomationRisk: 0.4},
		{ID: "mechanic", Track: TrackTrade, BaseSalary: 3200, SkillRequired: 4, DemandElasticity: 0.5, AutomationRisk: 0.3, Union: true},
		{ID: "electrician", Track: TrackTrade, BaseSalary: 3400, SkillRequired: 4, DemandElasticity: 0.5, AutomationRisk: 0.3, Union: true},
		{ID: "teacher", Track: TrackProfessional, BaseSalary: 3800, SkillRequired: 5, DemandElasticity: 0.3, AutomationRisk: 0.2, Union: true},
		{ID: "police_officer", Track: TrackProfessional, BaseSalary: 4000, SkillRequired: 5, DemandElasticity: 0.3, AutomationRisk: 0.2, Union: true},
		{ID: "nurse", Track: TrackProfessional, BaseSalary: 4200, SkillRequired: 5, DemandElasticity: 0.4, AutomationRisk: 0.2, Union: true},
		{ID: "accountant", Track: TrackProfessional, BaseSalary: 4500, SkillRequired: 6, DemandElasticity: 0.6, AutomationRisk: 0.5},
		{ID: "software_developer", Track: TrackProfessional, BaseSalary: 5000, SkillRequired: 6, DemandElasticity: 0.8, AutomationRisk: 0.3},
		{ID: "engineer", Track: TrackProfessional, BaseSalary: 5500, SkillRequired: 7, DemandElasticity: 0.7, AutomationRisk: 0.4},
		{ID: "lawyer", Track: TrackProfessional, BaseSalary: 7500, SkillRequired: 8, DemandElasticity: 0.5, AutomationRisk: 0.3},
		{ID: "doctor", Track: TrackProfessional, BaseSalary: 8000, SkillRequired: 9, DemandElasticity: 0.4, AutomationRisk: 0.1},
		{ID: "surgeon", Track: TrackProfessional, BaseSalary: 9000, SkillRequired: 10, DemandElasticity: 0.3, AutomationRisk: 0.1},
		{ID: "investment_banker", Track: TrackExecutive, BaseSalary: 10000, SkillRequired: 9, DemandElasticity: 0.7, AutomationRisk: 0.3},
		{ID: "executive", Track: TrackExecutive, BaseSalary: 12000, SkillRequired: 9, DemandElasticity: 0.8, AutomationRisk: 0.2},
		{ID: "ceo", Track: TrackExecutive, BaseSalary: 15000, SkillRequired: 10, DemandElasticity: 0.9, AutomationRisk: 0.1},
	}
}

// Catalog indexes jobs by id and supports fuzzy lookup for dispatcher input.
type Catalog struct {
	jobs  []Job
	byID  map[string]*Job
	names []string
}

func NewCatalog(jobs []Job) *Catalog {
	if jobs == nil {
		jobs = DefaultCatalog()
	}
	sorted := make([]Job, len(jobs))
	copy(sorted, jobs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].BaseSalary < sorted[j].BaseSalary })

	c := &Catalog{
		jobs: sorted,
		byID: make(map[string]*Job, len(sorted)),
	}
	for i := range c.jobs {
		c.byID[c.jobs[i].ID] = &c.jobs[i]
		c.names = append(c.names, c.jobs[i].ID)
	}
	return c
}

func (c *Catalog) Jobs() []Job {
	return c.jobs
}

func (c *Catalog) Get(id string) (Job, bool) {
	job, ok := c.byID[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Resolve finds the catalog job for possibly-misspelled user input. Exact id
// matches win; otherwise the best fuzzy match is returned.
func (c *Catalog) Resolve(input string) (Job, bool) {
	if job, ok := c.Get(input); ok {
		return job, true
	}
	matches := fuzzy.Find(input, c.names)
	if len(matches) == 0 {
		return Job{}, false
	}
	return c.Get(matches[0].Str)
}
