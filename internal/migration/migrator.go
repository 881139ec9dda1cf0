// Package migration imports the old Mongo bot's per-guild data into the
// relational store. One-shot tooling, driven by the migrate command.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
)

type Migrator struct {
	pgDB      *bun.DB
	eco       config.EconomyConfig
	mongoURI  string
	mongoName string
	batchSize int

	stats Stats
}

type Stats struct {
	Users    int
	Servers  int
	Skipped  int
	Started  time.Time
	Finished time.Time
}

func NewMigrator(pgDB *bun.DB, eco config.EconomyConfig, mongoURI, mongoName string) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		eco:       eco,
		mongoURI:  mongoURI,
		mongoName: mongoName,
		batchSize: 500,
	}
}

func (m *Migrator) Stats() Stats {
	return m.stats
}

// MigrateAll copies servers then users. Reruns are safe: rows that already
// exist are skipped, never overwritten, so a half-finished import can resume.
func (m *Migrator) MigrateAll(ctx context.Context) error {
	m.stats.Started = time.Now()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.mongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(m.mongoName)
	if err := m.migrateServers(ctx, db.Collection("servers")); err != nil {
		return err
	}
	if err := m.migrateUsers(ctx, db.Collection("users")); err != nil {
		return err
	}

	m.stats.Finished = time.Now()
	slog.Info("Migration finished",
		slog.String("type", "migration"),
		slog.Int("servers", m.stats.Servers),
		slog.Int("users", m.stats.Users),
		slog.Int("skipped", m.stats.Skipped),
		slog.Duration("took", m.stats.Finished.Sub(m.stats.Started)))
	return nil
}

func (m *Migrator) migrateServers(ctx context.Context, coll *mongo.Collection) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to read servers: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var legacy LegacyServer
		if err := cursor.Decode(&legacy); err != nil {
			return fmt.Errorf("failed to decode server doc: %w", err)
		}
		serverID, err := snowflake.Parse(legacy.GuildID)
		if err != nil {
			m.stats.Skipped++
			continue
		}

		state := m.convertServer(serverID, legacy)
		res, err := m.pgDB.NewInsert().
			Model(state).
			On("CONFLICT (server_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert state for %s: %w", legacy.GuildID, err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			m.stats.Skipped++
			continue
		}
		m.stats.Servers++
	}
	return cursor.Err()
}

func (m *Migrator) migrateUsers(ctx context.Context, coll *mongo.Collection) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to read users: %w", err)
	}
	defer cursor.Close(ctx)

	batch := make([]*models.Account, 0, m.batchSize)
	for cursor.Next(ctx) {
		var legacy LegacyUser
		if err := cursor.Decode(&legacy); err != nil {
			return fmt.Errorf("failed to decode user doc: %w", err)
		}
		account, err := convertUser(legacy)
		if err != nil {
			m.stats.Skipped++
			continue
		}

		batch = append(batch, account)
		if len(batch) >= m.batchSize {
			if err := m.flushAccounts(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	return m.flushAccounts(ctx, batch)
}

func (m *Migrator) flushAccounts(ctx context.Context, batch []*models.Account) error {
	if len(batch) == 0 {
		return nil
	}
	res, err := m.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT (server_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert account batch: %w", err)
	}
	rows, _ := res.RowsAffected()
	m.stats.Users += int(rows)
	m.stats.Skipped += len(batch) - int(rows)
	return nil
}

func convertUser(legacy LegacyUser) (*models.Account, error) {
	serverID, err := snowflake.Parse(legacy.GuildID)
	if err != nil {
		return nil, err
	}
	userID, err := snowflake.Parse(legacy.UserID)
	if err != nil {
		return nil, err
	}

	skills := make(map[string]int, len(legacy.Skills))
	for track, level := range legacy.Skills {
		skills[track] = int(level)
	}
	inventory := make(map[string]int, len(legacy.Inventory))
	for item, qty := range legacy.Inventory {
		if qty > 0 {
			inventory[item] = int(qty)
		}
	}

	now := time.Now()
	return &models.Account{
		ServerID:    serverID,
		UserID:      userID,
		Cash:        max(legacy.Balance, 0),
		Bank:        max(legacy.Bank, 0),
		Job:         legacy.Job,
		Skills:      skills,
		Inventory:   inventory,
		Reputation:  int(legacy.Reputation),
		CreditScore: legacy.CreditScore,
		UnionMember: legacy.UnionMember,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (m *Migrator) convertServer(serverID snowflake.ID, legacy LegacyServer) *models.EconomicState {
	phase := legacy.CyclePhase
	if _, ok := models.PhaseModifierTable[phase]; !ok {
		phase = models.PhaseExpansion
	}
	priceLevel := legacy.PriceLevel
	if priceLevel <= 0 {
		priceLevel = 1.0
	}

	now := time.Now()
	return &models.EconomicState{
		ServerID:         serverID,
		CyclePhase:       phase,
		PhaseStartedAt:   now,
		PhaseLength:      float64(m.eco.CycleDays) / float64(len(models.CyclePhases)),
		Velocity:         m.eco.Velocity,
		PriceLevel:       priceLevel,
		Gini:             legacy.Gini,
		UnemploymentRate: m.eco.NaturalUnemployment,
		TaxModifier:      1.0,
		MinimumWage:      m.eco.MinimumWage,
		InterestRate:     m.eco.InterestRate,
		PoliceStrength:   m.eco.PoliceStrength,
		Treasury:         max(legacy.Treasury, 0),
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
