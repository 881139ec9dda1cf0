package economy

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/database/repositories"
	"github.com/hazelvale/economica/internal/economy/labor"
)

// Income tax is assessed once per calendar day, on the first wage of the day.
const taxPeriodSec = 24 * 60 * 60

func taxPeriod(now time.Time) int64 {
	return now.Unix() / taxPeriodSec
}

// JobListing is one catalog entry with its live headcount and the wage a
// first-time hire would earn at current conditions.
type JobListing struct {
	Job       labor.Job
	Headcount int
	Wage      int64
}

// ListJobs returns every job with the wage computed for a fresh applicant.
func (e *Engine) ListJobs(ctx context.Context, serverID snowflake.ID) ([]JobListing, error) {
	var listings []JobListing
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		state, err := e.loadState(ctx, r, serverID)
		if err != nil {
			return err
		}
		jobs := e.labor.Catalog().Jobs()
		listings = make([]JobListing, 0, len(jobs))
		for _, job := range jobs {
			headcount, err := r.Accounts.CountEmployed(ctx, serverID, job.ID)
			if err != nil {
				return err
			}
			listings = append(listings, JobListing{
				Job:       job,
				Headcount: headcount,
				Wage:      e.labor.ComputeWage(job, state, 0, headcount+1),
			})
		}
		return nil
	})
	return listings, err
}

// Apply hires the user into the named job. The name is matched fuzzily
// against the catalog.
func (e *Engine) Apply(ctx context.Context, serverID, userID snowflake.ID, jobName string) (labor.Job, error) {
	var job labor.Job
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}
		job, err = e.labor.Apply(account, jobName)
		if err != nil {
			return err
		}
		return r.Accounts.Save(ctx, account)
	})
	return job, err
}

// Resign quits the current job. Skill levels on the track are kept.
func (e *Engine) Resign(ctx context.Context, serverID, userID snowflake.ID) error {
	return e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}
		if err := e.labor.Resign(account); err != nil {
			return err
		}
		return r.Accounts.Save(ctx, account)
	})
}

// WorkOutcome is a shift result plus the income tax withheld from it.
type WorkOutcome struct {
	labor.WorkResult
	Tax int64
}

// Work performs one shift: the wage lands in cash, income tax is withheld
// into the treasury on the first shift of each day, and the wage is recorded
// as output.
func (e *Engine) Work(ctx context.Context, serverID, userID snowflake.ID) (WorkOutcome, error) {
	var outcome WorkOutcome
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		now := time.Now()
		state, err := e.loadState(ctx, r, serverID)
		if err != nil {
			return err
		}
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}

		headcount := 0
		if account.Job != "" {
			if headcount, err = r.Accounts.CountEmployed(ctx, serverID, account.Job); err != nil {
				return err
			}
		}

		result, err := e.labor.Work(account, state, headcount, now)
		if err != nil {
			return err
		}
		tax := e.authority.CollectTax(account, state, result.Wage, taxPeriod(now))
		outcome = WorkOutcome{WorkResult: result, Tax: tax}

		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}
		if tax > 0 {
			if err := r.States.Save(ctx, state); err != nil {
				return err
			}
		}
		return r.Transactions.Record(ctx, &models.Transaction{
			ServerID: serverID,
			ToUserID: userID,
			Amount:   result.Wage,
			Type:     models.TxWage,
		})
	})
	return outcome, err
}
