package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- Agent/member directory (maintained by the admin service, read here)

CREATE TABLE IF NOT EXISTS agents (
    agent_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username VARCHAR(50) UNIQUE NOT NULL,
    parent_id UUID REFERENCES agents(agent_id) ON DELETE RESTRICT,
    rebate_cap_bps BIGINT NOT NULL CHECK (rebate_cap_bps >= 0 AND rebate_cap_bps <= 10000),
    balance_cents BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS members (
    member_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username VARCHAR(50) UNIQUE NOT NULL,
    agent_id UUID NOT NULL REFERENCES agents(agent_id) ON DELETE RESTRICT,
    balance_cents BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Periods and wagers

CREATE TABLE IF NOT EXISTS periods (
    period_id BIGINT PRIMARY KEY,
    open_at TIMESTAMPTZ NOT NULL,
    close_at TIMESTAMPTZ NOT NULL,
    result VARCHAR(32),
    drawn_at TIMESTAMPTZ,
    official BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS wagers (
    wager_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    period_id BIGINT NOT NULL REFERENCES periods(period_id) ON DELETE RESTRICT,
    member_id UUID NOT NULL REFERENCES members(member_id) ON DELETE RESTRICT,
    kind VARCHAR(20) NOT NULL,
    side VARCHAR(10) NOT NULL DEFAULT '',
    number INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL DEFAULT 0,
    position_b INTEGER NOT NULL DEFAULT 0,
    stake_cents BIGINT NOT NULL CHECK (stake_cents > 0),
    odds_thousandths BIGINT NOT NULL CHECK (odds_thousandths >= 1000),
    state VARCHAR(12) NOT NULL DEFAULT 'Unsettled',
    outcome VARCHAR(10) NOT NULL DEFAULT 'Unknown',
    payout_cents BIGINT NOT NULL DEFAULT 0,
    placed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    settled_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_wagers_period_state ON wagers (period_id, state);
CREATE INDEX IF NOT EXISTS idx_wagers_member_period ON wagers (member_id, period_id);

-- Ledger. The unique key is the settlement idempotency witness: balance
-- mutations commit in the same transaction as their posting, so a retried
-- settlement hits the conflict instead of double-paying.

CREATE TABLE IF NOT EXISTS postings (
    posting_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    period_id BIGINT NOT NULL REFERENCES periods(period_id) ON DELETE RESTRICT,
    wager_id UUID REFERENCES wagers(wager_id) ON DELETE RESTRICT,
    account_kind VARCHAR(10) NOT NULL,
    account_id UUID NOT NULL,
    posting_type VARCHAR(10) NOT NULL,
    amount_cents BIGINT NOT NULL,
    balance_before_cents BIGINT NOT NULL,
    balance_after_cents BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE NULLS NOT DISTINCT (period_id, wager_id, account_id, posting_type)
);

CREATE INDEX IF NOT EXISTS idx_postings_account ON postings (account_id, created_at);
CREATE INDEX IF NOT EXISTS idx_postings_period_type ON postings (period_id, posting_type);

-- Settlement bookkeeping

CREATE TABLE IF NOT EXISTS settlement_logs (
    period_id BIGINT PRIMARY KEY REFERENCES periods(period_id) ON DELETE RESTRICT,
    result VARCHAR(32) NOT NULL,
    settled_count INTEGER NOT NULL,
    win_count INTEGER NOT NULL,
    total_payout_cents BIGINT NOT NULL,
    total_rebate_cents BIGINT NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Exclusivity marker. The insert is the test-and-set: whoever gets the row in
-- is the period's settler. Rows older than the staleness cutoff are presumed
-- abandoned by a crashed process and cleared by the compensation supervisor.
CREATE TABLE IF NOT EXISTS settlement_runs (
    period_id BIGINT PRIMARY KEY,
    owner VARCHAR(64) NOT NULL,
    started_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS failed_settlements (
    period_id BIGINT PRIMARY KEY,
    attempts INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT '',
    terminal BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Win/loss control (maintained by the admin service, read here)

CREATE TABLE IF NOT EXISTS control_policies (
    policy_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    mode VARCHAR(20) NOT NULL,
    target_id UUID,
    direction VARCHAR(12) NOT NULL,
    strength DOUBLE PRECISION NOT NULL DEFAULT 1.0,
    from_period BIGINT NOT NULL DEFAULT 0,
    active BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- At most one policy may be active
CREATE UNIQUE INDEX IF NOT EXISTS idx_control_policies_active
    ON control_policies (active) WHERE active;

-- Audit trail

CREATE TABLE IF NOT EXISTS audit_events (
    id BIGSERIAL PRIMARY KEY,
    event_type VARCHAR(50) NOT NULL,
    period_id BIGINT,
    payload JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_audit_events_period ON audit_events (period_id, created_at);
CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events (event_type, created_at);
`
