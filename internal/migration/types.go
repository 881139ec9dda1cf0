package migration

// LegacyUser is one per-guild member document from the old Mongo bot.
type LegacyUser struct {
	GuildID     string           `bson:"guild_id"`
	UserID      string           `bson:"user_id"`
	Balance     int64            `bson:"balance"`
	Bank        int64            `bson:"bank"`
	Job         string           `bson:"job"`
	Skills      map[string]int32 `bson:"skills"`
	Reputation  int32            `bson:"reputation"`
	CreditScore float64          `bson:"credit_score"`
	UnionMember bool             `bson:"union_member"`
	Inventory   map[string]int32 `bson:"inventory"`
}

// LegacyServer is one guild economy document from the old Mongo bot.
type LegacyServer struct {
	GuildID    string  `bson:"guild_id"`
	Treasury   int64   `bson:"treasury"`
	PriceLevel float64 `bson:"price_level"`
	CyclePhase string  `bson:"cycle_phase"`
	Gini       float64 `bson:"gini"`
}
