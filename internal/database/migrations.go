package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(500),
		team_id UUID,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		captain_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS team_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(50) NOT NULL DEFAULT 'member',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(team_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS team_applications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		applicant_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		roles TEXT[] NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		rejection_reason TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// One live application per (team, applicant); history keeps the rest.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_team_applications_live
		ON team_applications(team_id, applicant_id)
		WHERE status IN ('pending', 'in_tryout')`,

	`CREATE TABLE IF NOT EXISTS recruitment_approaches (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		player_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_recruitment_approaches_live
		ON recruitment_approaches(team_id, player_id)
		WHERE status = 'pending'`,

	`CREATE TABLE IF NOT EXISTS tryout_chats (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		applicant_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		origin VARCHAR(20) NOT NULL,
		application_id UUID REFERENCES team_applications(id) ON DELETE SET NULL,
		approach_id UUID REFERENCES recruitment_approaches(id) ON DELETE SET NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		offer_message TEXT,
		offer_sender_id UUID REFERENCES users(id),
		offer_sent_at TIMESTAMP WITH TIME ZONE,
		ended_by VARCHAR(20),
		end_reason TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// Exactly one non-terminal chat per (team, applicant); ended chats are
	// soft-retained as history.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tryout_chats_open
		ON tryout_chats(team_id, applicant_id)
		WHERE status IN ('active', 'offer_sent')`,

	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		chat_id UUID REFERENCES tryout_chats(id) ON DELETE CASCADE,
		sender_id UUID REFERENCES users(id) ON DELETE SET NULL,
		receiver_id UUID REFERENCES users(id) ON DELETE CASCADE,
		client_key UUID,
		seq BIGINT NOT NULL,
		body TEXT NOT NULL,
		type VARCHAR(30) NOT NULL DEFAULT 'text',
		metadata JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (chat_id IS NOT NULL OR receiver_id IS NOT NULL)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_team_members_team_id ON team_members(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_members_user_id ON team_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_applications_team_id ON team_applications(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_applications_applicant_id ON team_applications(applicant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recruitment_approaches_player_id ON recruitment_approaches(player_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tryout_chats_team_id ON tryout_chats(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tryout_chats_applicant_id ON tryout_chats(applicant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_sender_id ON messages(sender_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver_id ON messages(receiver_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
